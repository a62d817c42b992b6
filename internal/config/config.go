// Package config provides layered configuration for changelog-sync using koanf.
// Configuration is loaded with priority: overrides (command-line flags) >
// environment variables (CHANGELOG_SYNC_*, GITHUB_TOKEN) > project config
// (.changelog-sync.yml, or legacy .changelog-sync.json) > defaults. A .env
// file at the repository root is read into the environment before the
// environment layer is applied.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables mapped onto config keys.
const EnvPrefix = "CHANGELOG_SYNC_"

// TokenEnvVar is the conventional token variable, applied below the
// prefixed CHANGELOG_SYNC_GITHUB_TOKEN.
const TokenEnvVar = "GITHUB_TOKEN"

// Configuration represents the changelog-sync configuration.
// Relative paths are resolved against the repository root (see ResolvePaths).
type Configuration struct {
	NewFeatures string `koanf:"new_features" yaml:"new_features" validate:"required"`
	Changelog   string `koanf:"changelog" yaml:"changelog" validate:"required"`
	Archive     string `koanf:"archive" yaml:"archive" validate:"required"`
	VersionFile string `koanf:"version_file" yaml:"version_file" validate:"required"`

	// NoGitHub disables every remote call: release fetch, PR search and
	// release notes.
	NoGitHub bool `koanf:"no_github" yaml:"no_github"`
	// StrictDates disables date carry-forward between feature log entries.
	StrictDates bool `koanf:"strict_dates" yaml:"strict_dates"`
	// FetchTags refreshes tags from the repository remotes before loading them.
	FetchTags bool `koanf:"fetch_tags" yaml:"fetch_tags"`

	ReferencePrefix string `koanf:"reference_prefix" yaml:"reference_prefix" validate:"required,alphanum"`
	HistoryDepth    int    `koanf:"history_depth" yaml:"history_depth" validate:"min=1,max=1000"`

	// MainTagPrefix and ArchiveMarkers split tags between the main
	// changelog and the archive.
	MainTagPrefix  string   `koanf:"main_tag_prefix" yaml:"main_tag_prefix" validate:"required"`
	ArchiveMarkers []string `koanf:"archive_markers" yaml:"archive_markers" validate:"dive,required"`

	GitHub GitHubConfig `koanf:"github" yaml:"github"`
}

// GitHubConfig holds the remote hosting settings.
type GitHubConfig struct {
	Owner string `koanf:"owner" yaml:"owner" validate:"required"`
	Repo  string `koanf:"repo" yaml:"repo" validate:"required"`
	// Token is optional; unauthenticated searches are rate limited harder.
	Token string `koanf:"token" yaml:"token,omitempty"`
	// APIURL overrides the API endpoint, e.g. for GitHub Enterprise.
	APIURL      string        `koanf:"api_url" yaml:"api_url,omitempty" validate:"omitempty,url"`
	Timeout     time.Duration `koanf:"timeout" yaml:"timeout"`
	SearchDelay time.Duration `koanf:"search_delay" yaml:"search_delay"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// RepoRoot is where the project config and .env are looked up.
	// Empty means the current directory.
	RepoRoot string
	// ConfigPath overrides the project config path. Unlike the default
	// location it must exist.
	ConfigPath string
	// Overrides are applied last, keyed by config key (e.g. "no_github").
	Overrides map[string]any
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
	// SkipDotEnv disables reading the .env file.
	SkipDotEnv bool
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	source, err := loadProjectConfig(k, opts, warningWriter)
	if err != nil {
		return nil, err
	}

	if !opts.SkipDotEnv {
		if err := loadDotEnv(DotEnvPath(opts.RepoRoot)); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("applying override %s: %w", key, err)
		}
	}

	return finalizeConfig(k, source)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadProjectConfig loads the project config (YAML preferred, legacy JSON
// supported) and returns the path it came from, or "defaults".
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions, warningWriter io.Writer) (string, error) {
	if opts.ConfigPath != "" {
		if !fileExists(opts.ConfigPath) {
			return "", &ValidationError{FilePath: opts.ConfigPath, Message: "config file not found"}
		}
		if strings.HasSuffix(opts.ConfigPath, ".json") {
			return opts.ConfigPath, loadJSONConfig(k, opts.ConfigPath)
		}
		return opts.ConfigPath, loadYAMLConfig(k, opts.ConfigPath)
	}

	yamlPath := ProjectConfigPath(opts.RepoRoot)
	legacyPath := LegacyProjectConfigPath(opts.RepoRoot)
	yamlExists := fileExists(yamlPath)
	legacyExists := fileExists(legacyPath)

	switch {
	case yamlExists:
		if err := loadYAMLConfig(k, yamlPath); err != nil {
			return "", err
		}
		if legacyExists && !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n\n", legacyPath, yamlPath)
		}
		return yamlPath, nil
	case legacyExists:
		if err := loadJSONConfig(k, legacyPath); err != nil {
			return "", err
		}
		if !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(warningWriter, "  Move its settings to %s.\n\n", yamlPath)
		}
		return legacyPath, nil
	}
	return "defaults", nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return nil
}

// loadJSONConfig loads a JSON config file
func loadJSONConfig(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load JSON config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides. The prefixed
// variables are loaded after GITHUB_TOKEN so they win.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(TokenEnvVar, ".", tokenTransform), nil); err != nil {
		return fmt.Errorf("failed to load %s: %w", TokenEnvVar, err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration
func finalizeConfig(k *koanf.Koanf, source string) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, source); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: CHANGELOG_SYNC_NO_GITHUB -> no_github,
// CHANGELOG_SYNC_GITHUB_API_URL -> github.api_url
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "github_"); ok {
		return "github." + rest
	}
	return key
}

// tokenTransform maps exactly GITHUB_TOKEN to github.token and drops
// other variables sharing the prefix.
func tokenTransform(s string) string {
	if s == TokenEnvVar {
		return "github.token"
	}
	return ""
}

// Redacted returns a copy safe to print, with the token masked.
func (c Configuration) Redacted() Configuration {
	if c.GitHub.Token != "" {
		c.GitHub.Token = "********"
	}
	c.ArchiveMarkers = append([]string(nil), c.ArchiveMarkers...)
	return c
}
