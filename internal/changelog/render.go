package changelog

import (
	"fmt"
	"io"
	"strings"
)

// Renderer formats assigned entries as Keep a Changelog markdown sections.
type Renderer struct {
	// Releases supplies effective dates and release note bodies by tag name.
	Releases map[string]Release
	// PullRequests maps reference ids to pull-request numbers.
	PullRequests map[string]int
	// ReleaseNotes enables the synthesized Notes category on tag sections.
	ReleaseNotes bool
}

// Blocks holds the three rendered bodies that make up the output documents.
type Blocks struct {
	Unreleased string
	Main       string
	Archive    string
}

// Build renders the unreleased block and the main and archive tag bodies.
func (r Renderer) Build(mainTags, archiveTags []Tag, a Assignment) Blocks {
	return Blocks{
		Unreleased: r.RenderUnreleased(a.Unreleased),
		Main:       r.RenderTags(mainTags, a.ByTag),
		Archive:    r.RenderTags(archiveTags, a.ByTag),
	}
}

// RenderUnreleased renders the "Unreleased" section. It never carries notes.
func (r Renderer) RenderUnreleased(entries []Entry) string {
	lines := []string{"## [Unreleased]"}
	lines = append(lines, r.renderCategories(bucketEntries(entries), nil)...)
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n\n"
}

// RenderTags renders one section per tag, newest effective date first.
func (r Renderer) RenderTags(tags []Tag, byTag map[string][]Entry) string {
	var lines []string
	for _, tag := range SortNewestFirst(tags, r.Releases) {
		lines = append(lines, formatTagHeader(tag, r.Releases))

		var notes []string
		if rel, ok := r.Releases[tag.Name]; ok && r.ReleaseNotes && rel.Body != "" {
			notes = ExtractReleaseNotes(rel.Body)
		}

		lines = append(lines, r.renderCategories(bucketEntries(byTag[tag.Name]), notes)...)
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

// formatTagHeader formats "## [1.2.0] - 2025-01-15".
func formatTagHeader(tag Tag, releases map[string]Release) string {
	date := Day(EffectiveDate(tag, releases)).Format(DateLayout)
	return fmt.Sprintf("## [%s] - %s", strings.TrimLeft(tag.Name, "v"), date)
}

// bucketEntries groups entries by category, preserving input order.
func bucketEntries(entries []Entry) map[Category][]Entry {
	buckets := make(map[Category][]Entry)
	for _, e := range entries {
		buckets[e.Category] = append(buckets[e.Category], e)
	}
	return buckets
}

// renderCategories writes non-empty categories in standard order.
func (r Renderer) renderCategories(buckets map[Category][]Entry, notes []string) []string {
	var lines []string
	for _, cat := range CategoryOrder() {
		var items []string
		for _, e := range buckets[cat] {
			items = append(items, RenderEntry(e, r.PullRequests[e.ReferenceID]))
		}
		if cat == Notes {
			for _, note := range notes {
				items = append(items, "- "+note)
			}
		}
		if len(items) == 0 {
			continue
		}
		lines = append(lines, "", "### "+string(cat))
		lines = append(lines, items...)
	}
	return lines
}

// RenderEntry formats a single entry line. prNumber is omitted when zero.
func RenderEntry(e Entry, prNumber int) string {
	var parts []string
	if e.ReferenceID != "" {
		parts = append(parts, "["+e.ReferenceID+"]")
	}
	if e.Title != "" {
		parts = append(parts, e.Title)
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if e.DateText != "" {
		text += fmt.Sprintf(" (implemented %s)", e.DateText)
	}
	if prNumber != 0 {
		text += fmt.Sprintf(" (#%d)", prNumber)
	}
	return "- " + text
}

// ExtractReleaseNotes turns a release body into note lines: blank lines and
// headings are dropped, a leading bullet marker is stripped.
func ExtractReleaseNotes(body string) []string {
	var notes []string
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(line[1:])
		}
		notes = append(notes, line)
	}
	return notes
}

// DocumentOptions configures the fixed header and footer text.
type DocumentOptions struct {
	// ArchiveRef is the archive path mentioned in the main document footer.
	ArchiveRef string
	// ReferencePrefix is used in the contribution example line.
	ReferencePrefix string
}

// WriteChangelog writes the current changelog document.
func WriteChangelog(w io.Writer, b Blocks, opts DocumentOptions) error {
	prefix := opts.ReferencePrefix
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}

	header := `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

Each pull request must add a one-line, user-facing entry under **Unreleased** in the appropriate category, including the PR number.
When applicable, include the feature reference ID and implementation date in ISO format (YYYY-MM-DD), for example:
- [` + prefix + `-068] Fix release notes accuracy (implemented 2025-12-25) (#PR_NUMBER)

`
	footer := fmt.Sprintf("\nHistorical entries and non-v1 releases have been moved to `%s`.\n", opts.ArchiveRef)

	for _, part := range []string{header, b.Unreleased, b.Main, footer} {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}

// WriteArchive writes the archive changelog document.
func WriteArchive(w io.Writer, b Blocks) error {
	header := `# Changelog Archive

Historical changelog entries for non-v1 releases are archived here.

`
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.Archive)
	return err
}

// ChangelogString renders the current changelog document to a string.
func ChangelogString(b Blocks, opts DocumentOptions) string {
	var sb strings.Builder
	_ = WriteChangelog(&sb, b, opts)
	return sb.String()
}

// ArchiveString renders the archive document to a string.
func ArchiveString(b Blocks) string {
	var sb strings.Builder
	_ = WriteArchive(&sb, b)
	return sb.String()
}
