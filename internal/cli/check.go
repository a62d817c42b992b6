package cli

import (
	clierrors "github.com/dragonshield/changelog-sync/internal/errors"
	"github.com/dragonshield/changelog-sync/internal/output"
	"github.com/dragonshield/changelog-sync/internal/syncer"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fail when CHANGELOG.md is out of date",
	Long: `Regenerate both documents in memory and compare them with the files on
disk. Nothing is written.

Exits 1 and lists the stale files when a sync would change anything, so CI
can require contributors to commit the regenerated changelog.`,
	Example: `  # In CI, without GitHub access
  changelog-sync check --no-github`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	session, result, err := regenerate(cmd)
	if err != nil {
		return err
	}

	changed, err := syncer.Changed(result.Documents)
	if err != nil {
		return err
	}

	printVersionWarnings(cmd, result)

	if len(changed) > 0 {
		rel := make([]string, len(changed))
		for i, path := range changed {
			rel[i] = relativeTo(session.Root, path)
		}
		return clierrors.ChangelogOutOfSync(rel)
	}

	output.PrintSuccess(cmd.OutOrStdout(), "Changelog is up to date")
	return nil
}
