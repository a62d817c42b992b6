// Package config tests layered loading: defaults, project files, .env, environment and overrides.
// Related: internal/config/config.go, internal/config/defaults.go
// Tags: config, koanf, env, dotenv, yaml

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// clearEnv unsets every variable the loader reads so the host environment
// cannot leak into a test. t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(TokenEnvVar, "")
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if name == TokenEnvVar || strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root})
	require.NoError(t, err)

	assert.Equal(t, "new_features.md", cfg.NewFeatures)
	assert.Equal(t, "CHANGELOG.md", cfg.Changelog)
	assert.Equal(t, "Archive/CHANGELOG-ARCHIVE.md", cfg.Archive)
	assert.Equal(t, "VERSION", cfg.VersionFile)
	assert.Equal(t, "DS", cfg.ReferencePrefix)
	assert.Equal(t, 20, cfg.HistoryDepth)
	assert.Equal(t, "v1.", cfg.MainTagPrefix)
	assert.Equal(t, []string{"-ios"}, cfg.ArchiveMarkers)
	assert.False(t, cfg.NoGitHub)
	assert.False(t, cfg.StrictDates)
	assert.Equal(t, "black77dragon", cfg.GitHub.Owner)
	assert.Equal(t, "DragonShieldNG", cfg.GitHub.Repo)
	assert.Equal(t, 20*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.GitHub.SearchDelay)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestLoad_ProjectYAML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), `
changelog: docs/CHANGELOG.md
strict_dates: true
archive_markers: ["-ios", "-beta"]
github:
  owner: acme
  repo: app
  search_delay: 1s
`)

	cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root})
	require.NoError(t, err)

	assert.Equal(t, "docs/CHANGELOG.md", cfg.Changelog)
	assert.True(t, cfg.StrictDates)
	assert.Equal(t, []string{"-ios", "-beta"}, cfg.ArchiveMarkers)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, "app", cfg.GitHub.Repo)
	assert.Equal(t, time.Second, cfg.GitHub.SearchDelay)
	assert.Equal(t, 20*time.Second, cfg.GitHub.Timeout, "unset keys keep defaults")
	assert.Equal(t, "new_features.md", cfg.NewFeatures)
}

func TestLoad_LegacyJSONWarns(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, LegacyProjectConfigPath(root), `{"history_depth": 5}`)

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root, WarningWriter: &warnings})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.HistoryDepth)
	assert.Contains(t, warnings.String(), "deprecated JSON config")
}

func TestLoad_YAMLPreferredOverLegacy(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), "history_depth: 7\n")
	writeFile(t, LegacyProjectConfigPath(root), `{"history_depth": 5}`)

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root, WarningWriter: &warnings})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.HistoryDepth)
	assert.Contains(t, warnings.String(), "ignored")

	warnings.Reset()
	_, err = LoadWithOptions(LoadOptions{RepoRoot: root, WarningWriter: &warnings, SkipWarnings: true})
	require.NoError(t, err)
	assert.Empty(t, warnings.String())
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadWithOptions(LoadOptions{RepoRoot: root, ConfigPath: filepath.Join(root, "nope.yml")})
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Message, "not found")
	})

	t.Run("custom yaml path", func(t *testing.T) {
		path := filepath.Join(root, "ci", "sync.yml")
		writeFile(t, path, "no_github: true\n")
		cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root, ConfigPath: path})
		require.NoError(t, err)
		assert.True(t, cfg.NoGitHub)
	})

	t.Run("custom json path", func(t *testing.T) {
		path := filepath.Join(root, "ci", "sync.json")
		writeFile(t, path, `{"reference_prefix": "APP"}`)
		cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root, ConfigPath: path})
		require.NoError(t, err)
		assert.Equal(t, "APP", cfg.ReferencePrefix)
	})
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), "no_github: false\nhistory_depth: 7\n")

	t.Setenv("CHANGELOG_SYNC_NO_GITHUB", "true")
	t.Setenv("CHANGELOG_SYNC_HISTORY_DEPTH", "3")
	t.Setenv("CHANGELOG_SYNC_GITHUB_API_URL", "https://ghe.example.com/api/v3")
	t.Setenv("CHANGELOG_SYNC_GITHUB_TIMEOUT", "5s")

	cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root})
	require.NoError(t, err)

	assert.True(t, cfg.NoGitHub, "environment beats project file")
	assert.Equal(t, 3, cfg.HistoryDepth)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHub.APIURL)
	assert.Equal(t, 5*time.Second, cfg.GitHub.Timeout)
}

func TestLoad_Token(t *testing.T) {
	tests := map[string]struct {
		githubToken   string
		prefixedToken string
		dotEnv        string
		want          string
	}{
		"GITHUB_TOKEN": {
			githubToken: "plain",
			want:        "plain",
		},
		"prefixed variable wins": {
			githubToken:   "plain",
			prefixedToken: "prefixed",
			want:          "prefixed",
		},
		"dotenv fills token": {
			dotEnv: "GITHUB_TOKEN=from-dotenv\n",
			want:   "from-dotenv",
		},
		"environment beats dotenv": {
			githubToken: "plain",
			dotEnv:      "GITHUB_TOKEN=from-dotenv\n",
			want:        "plain",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			root := t.TempDir()
			if tt.githubToken != "" {
				t.Setenv(TokenEnvVar, tt.githubToken)
			}
			if tt.prefixedToken != "" {
				t.Setenv(EnvPrefix+"GITHUB_TOKEN", tt.prefixedToken)
			}
			if tt.dotEnv != "" {
				writeFile(t, DotEnvPath(root), tt.dotEnv)
			}

			cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.GitHub.Token)
		})
	}
}

func TestLoad_SkipDotEnv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, DotEnvPath(root), "GITHUB_TOKEN=from-dotenv\n")

	cfg, err := LoadWithOptions(LoadOptions{RepoRoot: root, SkipDotEnv: true})
	require.NoError(t, err)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestLoad_OverridesWin(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv("CHANGELOG_SYNC_NO_GITHUB", "false")

	cfg, err := LoadWithOptions(LoadOptions{
		RepoRoot: root,
		Overrides: map[string]any{
			"no_github":    true,
			"changelog":    "OUT.md",
			"strict_dates": true,
		},
	})
	require.NoError(t, err)

	assert.True(t, cfg.NoGitHub)
	assert.True(t, cfg.StrictDates)
	assert.Equal(t, "OUT.md", cfg.Changelog)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]struct {
		yaml      string
		wantField string
	}{
		"empty changelog path": {
			yaml:      "changelog: \"\"\n",
			wantField: "changelog",
		},
		"prefix with punctuation": {
			yaml:      "reference_prefix: \"DS-\"\n",
			wantField: "reference_prefix",
		},
		"history depth zero": {
			yaml:      "history_depth: 0\n",
			wantField: "history_depth",
		},
		"bad api url": {
			yaml:      "github:\n  api_url: \"not a url\"\n",
			wantField: "github.api_url",
		},
		"negative delay": {
			yaml:      "github:\n  search_delay: -1s\n",
			wantField: "github.search_delay",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			root := t.TempDir()
			writeFile(t, ProjectConfigPath(root), tt.yaml)

			_, err := LoadWithOptions(LoadOptions{RepoRoot: root})
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Equal(t, ProjectConfigPath(root), vErr.FilePath)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ProjectConfigPath(root), "changelog: [unclosed\n")

	_, err := LoadWithOptions(LoadOptions{RepoRoot: root})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Greater(t, vErr.Line, 0)
}

func TestDefaultConfigTemplateMatchesDefaults(t *testing.T) {
	var fromTemplate map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(GetDefaultConfigTemplate()), &fromTemplate))

	for key := range GetDefaults() {
		assert.Contains(t, fromTemplate, key, "template documents %s", key)
	}
	assert.Equal(t, "DS", fromTemplate["reference_prefix"])
	assert.Equal(t, "v1.", fromTemplate["main_tag_prefix"])
}

func TestRedacted(t *testing.T) {
	cfg := Configuration{GitHub: GitHubConfig{Token: "secret"}, ArchiveMarkers: []string{"-ios"}}
	red := cfg.Redacted()

	assert.Equal(t, "********", red.GitHub.Token)
	assert.Equal(t, "secret", cfg.GitHub.Token, "original untouched")

	red.ArchiveMarkers[0] = "changed"
	assert.Equal(t, "-ios", cfg.ArchiveMarkers[0])

	assert.Empty(t, Configuration{}.Redacted().GitHub.Token)
}
