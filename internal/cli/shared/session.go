package shared

import (
	"fmt"
	"os"

	"github.com/dragonshield/changelog-sync/internal/config"
	clierrors "github.com/dragonshield/changelog-sync/internal/errors"
	"github.com/dragonshield/changelog-sync/internal/git"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// syncFlag binds a command-line flag to a config key.
type syncFlag struct {
	name    string
	key     string
	usage   string
	boolean bool
}

var syncFlags = []syncFlag{
	{name: "new-features", key: "new_features", usage: "Feature log, relative to the repository root (default new_features.md)"},
	{name: "changelog", key: "changelog", usage: "Generated changelog (default CHANGELOG.md)"},
	{name: "archive", key: "archive", usage: "Generated archive (default Archive/CHANGELOG-ARCHIVE.md)"},
	{name: "version-file", key: "version_file", usage: "VERSION file checked against the latest tag (default VERSION)"},
	{name: "no-github", key: "no_github", usage: "Skip GitHub lookups and release notes", boolean: true},
	{name: "strict-dates", key: "strict_dates", usage: "Do not carry dates forward to undated entries", boolean: true},
	{name: "fetch-tags", key: "fetch_tags", usage: "Fetch tags from every remote before reading them", boolean: true},
}

// AddSyncFlags registers the flags that override configuration keys.
func AddSyncFlags(fs *pflag.FlagSet) {
	for _, f := range syncFlags {
		if f.boolean {
			fs.Bool(f.name, false, f.usage)
			continue
		}
		fs.String(f.name, "", f.usage)
	}
}

// Overrides returns config overrides for the sync flags set explicitly on
// the command line. Flags left at their default do not override config.
func Overrides(fs *pflag.FlagSet) (map[string]any, error) {
	overrides := make(map[string]any)
	for _, f := range syncFlags {
		flag := fs.Lookup(f.name)
		if flag == nil || !flag.Changed {
			continue
		}
		if f.boolean {
			v, err := fs.GetBool(f.name)
			if err != nil {
				return nil, err
			}
			overrides[f.key] = v
			continue
		}
		v, err := fs.GetString(f.name)
		if err != nil {
			return nil, err
		}
		overrides[f.key] = v
	}
	return overrides, nil
}

// Session is the resolved environment of one command: repository,
// configuration and document paths.
type Session struct {
	Root string
	// Repo is nil when the working directory is not inside a repository.
	Repo   *git.Repo
	Config *config.Configuration
	Paths  config.Paths
}

// LoadSession locates the repository root (falling back to the working
// directory) and loads configuration with the command's flags applied.
func LoadSession(cmd *cobra.Command) (*Session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	s := &Session{Root: cwd}
	if repo, err := git.Open(cwd); err == nil {
		s.Repo = repo
		s.Root = repo.Root()
	}

	configPath, _ := cmd.Flags().GetString("config")
	overrides, err := Overrides(cmd.Flags())
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Argument, "reading flags")
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		RepoRoot:      s.Root,
		ConfigPath:    configPath,
		Overrides:     overrides,
		WarningWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}

	s.Config = cfg
	s.Paths = cfg.ResolvePaths(s.Root)
	return s, nil
}
