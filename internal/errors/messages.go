package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the changelog-sync CLI.
// These templates ensure consistent, actionable error messages.

// MissingFeatureLog creates an error for a missing feature log.
func MissingFeatureLog(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("new_features.md not found at %s", path),
		"Run changelog-sync from the repository root",
		"Or point to the feature log with --new-features <path>",
	)
}

// InvalidFeatureDate creates an error for an entry whose explicit date is
// not a real calendar date.
func InvalidFeatureDate(path string, line int, value string, err error) *CLIError {
	cliErr := NewRuntimeError(
		fmt.Sprintf("%s:%d: invalid implementation date %q", path, line, value),
		"Dates must be ISO calendar dates: YYYY-MM-DD",
		"Fix the entry and run changelog-sync again; no files were written",
	)
	cliErr.Cause = err
	return cliErr
}

// InvalidConfig creates an error for a config file or value that fails
// validation.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Check .changelog-sync.yml and CHANGELOG_SYNC_* environment variables",
		"Show the effective values with: changelog-sync config show",
	)
}

// TagLoadFailed creates an error when repository tags cannot be read.
func TagLoadFailed(err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"failed to read repository tags",
		"Check that the repository is not corrupted: git fsck",
	)
}

// FileNotWritable creates an error when an output document cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the parent directory is writable",
	)
}

// ChangelogOutOfSync creates an error for 'check' when the documents on
// disk differ from what a sync would write.
func ChangelogOutOfSync(paths []string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("changelog is out of date: %s", strings.Join(paths, ", ")),
		"Run 'changelog-sync' and commit the result",
		"Preview the changes with: changelog-sync --dry-run",
	)
}
