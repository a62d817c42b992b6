// Package changelog turns a hand-maintained feature log into Keep a Changelog
// markdown.
//
// This package implements:
//   - new_features.md parsing into categorized, dated entries
//   - assignment of entries to the earliest release tag-day on or after
//     their implementation date, with a horizon beyond which entries stay
//     unreleased
//   - markdown rendering of the unreleased, main and archive sections
//   - a colored terminal summary of an assignment
//
// The package performs no I/O beyond the readers and writers it is handed;
// tag loading, release fetching and date inference live in the git, github
// and resolver packages.
package changelog
