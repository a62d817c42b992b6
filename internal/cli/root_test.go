// Package cli tests root command and global flags for changelog-sync.
// Related: internal/cli/root.go
// Tags: cli, root, commands, global-flags

package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dragonshield/changelog-sync/internal/cli/shared"
	clierrors "github.com/dragonshield/changelog-sync/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "changelog-sync", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.NotNil(t, rootCmd.RunE)
}

func TestRootCmd_Flags(t *testing.T) {
	t.Parallel()

	persistent := []string{
		"config", "debug", "verbose",
		"new-features", "changelog", "archive", "version-file",
		"no-github", "strict-dates", "fetch-tags",
	}
	for _, name := range persistent {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "persistent flag %s", name)
	}

	assert.NotNil(t, rootCmd.Flags().Lookup("dry-run"))
	assert.Nil(t, rootCmd.PersistentFlags().Lookup("dry-run"), "dry-run only applies to sync")
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	groups := make(map[string]string)
	for _, cmd := range rootCmd.Commands() {
		groups[cmd.Name()] = cmd.GroupID
	}

	tests := map[string]string{
		"check":   shared.GroupSync,
		"config":  shared.GroupConfiguration,
		"version": shared.GroupInfo,
	}
	for name, group := range tests {
		assert.Equal(t, group, groups[name], name)
	}

	groupIDs := make(map[string]bool)
	for _, g := range rootCmd.Groups() {
		groupIDs[g.ID] = true
	}
	assert.True(t, groupIDs[shared.GroupSync])
	assert.True(t, groupIDs[shared.GroupConfiguration])
	assert.True(t, groupIDs[shared.GroupInfo])
}

func TestReportError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err      error
		wantOut  []string
		wantNone bool
	}{
		"cli error": {
			err:     clierrors.MissingFeatureLog("/repo/new_features.md"),
			wantOut: []string{"new_features.md not found at /repo/new_features.md", "--new-features"},
		},
		"plain error": {
			err:     errors.New("boom"),
			wantOut: []string{"boom"},
		},
		"exit error is silent": {
			err:      shared.NewExitError(shared.ExitFailure),
			wantNone: true,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			reportError(&buf, tt.err)
			if tt.wantNone {
				assert.Empty(t, buf.String())
				return
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRelativeTo(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		root string
		path string
		want string
	}{
		"inside":  {root: "/repo", path: "/repo/Archive/CHANGELOG-ARCHIVE.md", want: "Archive/CHANGELOG-ARCHIVE.md"},
		"outside": {root: "/repo", path: "/elsewhere/CHANGELOG.md", want: "/elsewhere/CHANGELOG.md"},
		"sibling": {root: "/repo", path: "/repository/x.md", want: "/repository/x.md"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, relativeTo(tt.root, tt.path))
		})
	}
}
