package config

import "time"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# changelog-sync configuration
# Relative paths are resolved against the repository root.
# Every key can be overridden with CHANGELOG_SYNC_<KEY>, e.g. CHANGELOG_SYNC_NO_GITHUB=true.

# Documents
new_features: new_features.md         # Feature log (input)
changelog: CHANGELOG.md               # Main changelog (output)
archive: Archive/CHANGELOG-ARCHIVE.md # Archive changelog (output)
version_file: VERSION                 # Plain-text version compared with the latest tag

# Parsing
reference_prefix: DS                  # Reference ids look like DS-123
strict_dates: false                   # Disable date carry-forward between entries

# Tag routing
main_tag_prefix: v1.                  # Tags starting with this go to the main changelog
archive_markers:                      # ...unless they contain one of these
  - -ios

# Local history
history_depth: 20                     # Commits scanned for a pull-request number
fetch_tags: false                     # Fetch tags from remotes before syncing

# Remote (GitHub)
no_github: false                      # Skip releases, PR search and release notes
github:
  owner: black77dragon
  repo: DragonShieldNG
  # token: ""                         # Prefer GITHUB_TOKEN in the environment or .env
  # api_url: ""                       # GitHub Enterprise API endpoint
  timeout: 20s                        # Per-call timeout
  search_delay: 200ms                 # Pause after each pull-request search
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"new_features": "new_features.md",
		"changelog":    "CHANGELOG.md",
		"archive":      "Archive/CHANGELOG-ARCHIVE.md",
		"version_file": "VERSION",
		"no_github":    false,
		"strict_dates": false,
		"fetch_tags":   false,
		// reference_prefix: ids are <prefix>-<digits>, matched case-insensitively.
		"reference_prefix": "DS",
		"history_depth":    20,
		// main_tag_prefix/archive_markers: v1.x releases go to the main
		// changelog; iOS builds and everything older go to the archive.
		"main_tag_prefix": "v1.",
		"archive_markers": []string{"-ios"},
		"github": map[string]interface{}{
			"owner":        "black77dragon",
			"repo":         "DragonShieldNG",
			"token":        "",
			"api_url":      "",
			"timeout":      (20 * time.Second).String(),
			"search_delay": (200 * time.Millisecond).String(),
		},
	}
}
