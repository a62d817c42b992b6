// Package config tests YAML syntax validation, error formatting and path resolution.
// Related: internal/config/validate.go, internal/config/paths.go
// Tags: config, validation, yaml, paths

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAMLSyntax(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content  *string
		wantErr  bool
		wantLine bool
	}{
		"missing file": {content: nil},
		"empty file":   {content: ptr("   \n")},
		"valid":        {content: ptr("changelog: CHANGELOG.md\n")},
		"invalid":      {content: ptr("a: b\n  c: [\n"), wantErr: true, wantLine: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "cfg.yml")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			err := ValidateYAMLSyntax(path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, path, vErr.FilePath)
			if tt.wantLine {
				assert.Greater(t, vErr.Line, 0)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  ValidationError
		want string
	}{
		"with position": {
			err:  ValidationError{FilePath: "c.yml", Line: 3, Column: 2, Message: "bad"},
			want: "c.yml:3:2: bad",
		},
		"with field": {
			err:  ValidationError{FilePath: "c.yml", Field: "github.owner", Message: "is required"},
			want: "c.yml: field 'github.owner': is required",
		},
		"message only": {
			err:  ValidationError{FilePath: "c.yml", Message: "permission denied"},
			want: "c.yml: permission denied",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestExtractLineColumn(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		msg      string
		wantLine int
		wantCol  int
	}{
		"line and column": {msg: "yaml: line 5: column 3: oops", wantLine: 5, wantCol: 3},
		"line only":       {msg: "yaml: line 7: could not find expected ':'", wantLine: 7, wantCol: 1},
		"no position":     {msg: "something else", wantLine: 0, wantCol: 0},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			line, col := extractLineColumn(tt.msg)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "elsewhere", "CHANGELOG.md")
	cfg := Configuration{
		NewFeatures: "new_features.md",
		Changelog:   abs,
		Archive:     "Archive/CHANGELOG-ARCHIVE.md",
		VersionFile: "VERSION",
	}

	paths := cfg.ResolvePaths("/repo")
	assert.Equal(t, filepath.Join("/repo", "new_features.md"), paths.NewFeatures)
	assert.Equal(t, abs, paths.Changelog, "absolute paths are kept")
	assert.Equal(t, filepath.Join("/repo", "Archive", "CHANGELOG-ARCHIVE.md"), paths.Archive)
	assert.Equal(t, filepath.Join("/repo", "VERSION"), paths.VersionFile)
}

func TestArchiveLink(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		changelog string
		archive   string
		want      string
	}{
		"default layout": {
			changelog: "CHANGELOG.md",
			archive:   "Archive/CHANGELOG-ARCHIVE.md",
			want:      "Archive/CHANGELOG-ARCHIVE.md",
		},
		"changelog in subdirectory": {
			changelog: "docs/CHANGELOG.md",
			archive:   "Archive/CHANGELOG-ARCHIVE.md",
			want:      "../Archive/CHANGELOG-ARCHIVE.md",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := Configuration{Changelog: tt.changelog, Archive: tt.archive}
			assert.Equal(t, tt.want, cfg.ResolvePaths("/repo").ArchiveLink())
		})
	}
}
