// Package version compares the plain-text VERSION file with the most recent
// main-line release tag. A mismatch never fails a run; it produces warnings
// explaining that newer entries stay under [Unreleased].
package version

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Status describes how the VERSION file relates to the latest tag.
type Status int

const (
	// StatusMatch means VERSION names the latest tag.
	StatusMatch Status = iota
	// StatusAhead means VERSION is newer than the latest tag (release pending).
	StatusAhead
	// StatusBehind means VERSION is older than the latest tag.
	StatusBehind
	// StatusMismatch means the two differ and at least one is not semver.
	StatusMismatch
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusMatch:
		return "match"
	case StatusAhead:
		return "ahead"
	case StatusBehind:
		return "behind"
	default:
		return "mismatch"
	}
}

// Result is the outcome of comparing VERSION with the latest tag.
type Result struct {
	FileVersion string
	LatestTag   string
	Status      Status
}

// ReadFile returns the trimmed contents of the VERSION file. The boolean is
// false when the file does not exist.
func ReadFile(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading version file: %w", err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Compare relates fileVersion (e.g. "1.2.0") to latestTag (e.g. "v1.2.0").
// "v"+fileVersion equal to the tag is a match; otherwise both are parsed as
// semantic versions to tell ahead from behind.
func Compare(fileVersion, latestTag string) Result {
	r := Result{FileVersion: fileVersion, LatestTag: latestTag}
	if "v"+fileVersion == latestTag {
		r.Status = StatusMatch
		return r
	}

	fv, err := semver.NewVersion(fileVersion)
	if err != nil {
		r.Status = StatusMismatch
		return r
	}
	tv, err := semver.NewVersion(latestTag)
	if err != nil {
		r.Status = StatusMismatch
		return r
	}

	switch fv.Compare(tv) {
	case 0:
		r.Status = StatusMatch
	case 1:
		r.Status = StatusAhead
	default:
		r.Status = StatusBehind
	}
	return r
}

// Warnings returns the lines to print for r; none when it matches.
func (r Result) Warnings() []string {
	if r.Status == StatusMatch {
		return nil
	}
	return []string{
		fmt.Sprintf("Warning: VERSION is %s but latest tag is %s.", r.FileVersion, r.LatestTag),
		"Entries newer than the latest tag will stay under [Unreleased].",
	}
}

// Check reads path and compares it with latestTag. It returns no result
// when the file is missing or there is no latest tag.
func Check(path, latestTag string) (Result, bool, error) {
	if latestTag == "" {
		return Result{}, false, nil
	}
	fileVersion, ok, err := ReadFile(path)
	if err != nil || !ok {
		return Result{}, false, err
	}
	return Compare(fileVersion, latestTag), true, nil
}
