package config

import (
	"fmt"
	"io"
	"os"

	"github.com/dragonshield/changelog-sync/internal/cli/shared"
	"github.com/dragonshield/changelog-sync/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigCmd groups the configuration subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create changelog-sync configuration",
	Long: `Show or create changelog-sync configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CHANGELOG_SYNC_*, GITHUB_TOKEN)
  3. .env in the repository root (never overrides the environment)
  4. Project config (.changelog-sync.yml, or legacy .changelog-sync.json)
  5. Built-in defaults`,
	Example: `  # Show the effective configuration
  changelog-sync config show

  # Write a commented config file to the repository root
  changelog-sync config init`,
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Show the effective configuration",
	Long:         "Show the merged configuration after flags, environment, .env, config file and defaults. The GitHub token is masked.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runConfigShow,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	session, err := shared.LoadSession(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSources(cmd, out, session.Root)

	data, err := yaml.Marshal(session.Config.Redacted())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

// printSources lists where configuration values may have come from.
func printSources(cmd *cobra.Command, out io.Writer, root string) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(out, bold("Configuration Sources:"))

	explicit, _ := cmd.Flags().GetString("config")
	files := []string{config.ProjectConfigPath(root), config.LegacyProjectConfigPath(root)}
	if explicit != "" {
		files = []string{explicit}
	}
	loaded := false
	for _, path := range files {
		status := dim("(not found)")
		switch {
		case fileExistsCheck(path) && !loaded:
			status = color.GreenString("(loaded)")
			loaded = true
		case fileExistsCheck(path):
			status = color.YellowString("(ignored)")
		}
		fmt.Fprintf(out, "  %s %s\n", path, status)
	}

	envPath := config.DotEnvPath(root)
	if fileExistsCheck(envPath) {
		fmt.Fprintf(out, "  %s %s\n", envPath, color.GreenString("(loaded)"))
	}
	if _, ok := os.LookupEnv(config.TokenEnvVar); ok {
		fmt.Fprintf(out, "  %s %s\n", config.TokenEnvVar, color.GreenString("(set)"))
	}
	fmt.Fprintln(out)
}

// fileExistsCheck reports whether path exists and is a regular file.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
