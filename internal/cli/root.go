package cli

import (
	"errors"
	"fmt"
	"io"

	clicfg "github.com/dragonshield/changelog-sync/internal/cli/config"
	"github.com/dragonshield/changelog-sync/internal/cli/shared"
	"github.com/dragonshield/changelog-sync/internal/cli/util"
	clierrors "github.com/dragonshield/changelog-sync/internal/errors"
	"github.com/dragonshield/changelog-sync/internal/git"
	"github.com/dragonshield/changelog-sync/internal/github"
	"github.com/dragonshield/changelog-sync/internal/resolver"
	"github.com/dragonshield/changelog-sync/internal/syncer"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "changelog-sync",
	Short: "Regenerate CHANGELOG.md from new_features.md and release tags",
	Long: `Regenerate CHANGELOG.md and the changelog archive from the checked entries
in new_features.md, the repository's release tags and GitHub releases.

Each checked entry is placed under the first release published on or after
its implementation date. Entries without a date, or implemented after the
latest release, stay under [Unreleased]. Missing dates and pull-request
numbers are looked up on GitHub and in the commit history.

Both files are fully regenerated on every run. Nothing is written unless the
whole run succeeds.

Configuration is loaded with the following priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CHANGELOG_SYNC_*, GITHUB_TOKEN)
  3. .env in the repository root
  4. Project config (.changelog-sync.yml)
  5. Built-in defaults`,
	Example: `  # Regenerate CHANGELOG.md and the archive
  changelog-sync

  # Preview without writing, offline
  changelog-sync --dry-run --no-github

  # Leave undated entries undated instead of carrying dates forward
  changelog-sync --strict-dates

  # Fail in CI when the committed changelog is stale
  changelog-sync check`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			installDebugLogger(cmd.ErrOrStderr())
		}
	},
	RunE: runSync,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: shared.GroupSync, Title: "Sync Commands:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: shared.GroupInfo, Title: "Info:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Path to config file (default: .changelog-sync.yml in the repository root)")
	pf.Bool("debug", false, "Write debug logs to stderr")
	pf.BoolP("verbose", "v", false, "Show progress stages even when stderr is not a terminal")
	shared.AddSyncFlags(pf)

	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the documents instead of writing them")

	checkCmd.GroupID = shared.GroupSync
	rootCmd.AddCommand(checkCmd)

	clicfg.ConfigCmd.GroupID = shared.GroupConfiguration
	rootCmd.AddCommand(clicfg.ConfigCmd)

	util.VersionCmd.GroupID = shared.GroupInfo
	rootCmd.AddCommand(util.VersionCmd)
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// reportError prints err in the CLIError format. Errors that were already
// reported only carry an exit code and print nothing.
func reportError(w io.Writer, err error) {
	var exitErr *shared.ExitError
	if errors.As(err, &exitErr) {
		return
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.FprintError(w, cliErr)
		return
	}
	fmt.Fprint(w, clierrors.FormatSimpleError(err, clierrors.Runtime))
}

// debugf is a no-op unless --debug is set.
var debugf = func(format string, args ...any) {}

// installDebugLogger routes every package's debug output to w.
func installDebugLogger(w io.Writer) {
	logger := func(format string, args ...any) {
		fmt.Fprintf(w, "[debug] "+format+"\n", args...)
	}
	debugf = logger
	git.SetDebugLogger(logger)
	github.SetDebugLogger(logger)
	resolver.SetDebugLogger(logger)
	syncer.SetDebugLogger(logger)
}
