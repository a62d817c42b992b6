package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dragonshield/changelog-sync/internal/config"
	clierrors "github.com/dragonshield/changelog-sync/internal/errors"
	"github.com/dragonshield/changelog-sync/internal/git"
	"github.com/dragonshield/changelog-sync/internal/output"
	"github.com/spf13/cobra"
)

var initForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented .changelog-sync.yml",
	Long: `Write a commented .changelog-sync.yml with every option at its default.

By default the file is created in the repository root. If it already exists
it is left unchanged (use --force to overwrite).

Path argument:
  If provided, the file is written to that directory instead. The path can
  be relative, absolute, or start with a tilde. Missing directories are
  created.`,
	Example: `  # Create .changelog-sync.yml in the repository root
  changelog-sync config init

  # Overwrite an existing file
  changelog-sync config init --force`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	root, err := git.GetRepositoryRoot()
	if err != nil {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	dir, err := resolveInitDir(args, root)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Argument, "invalid path")
	}

	path := config.ProjectConfigPath(dir)
	out := cmd.OutOrStdout()

	if fileExistsCheck(path) && !initForce {
		output.PrintNotice(out, path+" already exists", "(use --force to overwrite)")
		return nil
	}

	if err := writeDefaultConfig(path); err != nil {
		return clierrors.FileNotWritable(path, err)
	}

	output.PrintSuccess(out, "Wrote "+path)
	if fileExistsCheck(config.LegacyProjectConfigPath(dir)) {
		output.PrintNotice(out, config.LegacyProjectConfigFile+" is now ignored; move its settings over and delete it", "")
	}
	return nil
}

// writeDefaultConfig writes the commented default template to path,
// creating parent directories.
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644)
}
