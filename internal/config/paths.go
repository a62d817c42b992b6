package config

import (
	"path/filepath"
)

// ProjectConfigFile is the project-level config file name.
const ProjectConfigFile = ".changelog-sync.yml"

// LegacyProjectConfigFile is the deprecated JSON config file name.
const LegacyProjectConfigFile = ".changelog-sync.json"

// ProjectConfigPath returns the path to the project-level config file
// under root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, ProjectConfigFile)
}

// LegacyProjectConfigPath returns the path to the legacy JSON config file
// under root.
func LegacyProjectConfigPath(root string) string {
	return filepath.Join(root, LegacyProjectConfigFile)
}

// DotEnvPath returns the path of the .env file under root.
func DotEnvPath(root string) string {
	return filepath.Join(root, ".env")
}

// Paths holds the absolute locations of the documents changelog-sync reads
// and writes.
type Paths struct {
	NewFeatures string
	Changelog   string
	Archive     string
	VersionFile string
}

// ResolvePaths joins relative document paths onto root.
func (c *Configuration) ResolvePaths(root string) Paths {
	return Paths{
		NewFeatures: resolve(root, c.NewFeatures),
		Changelog:   resolve(root, c.Changelog),
		Archive:     resolve(root, c.Archive),
		VersionFile: resolve(root, c.VersionFile),
	}
}

// ArchiveLink returns the archive location relative to the changelog's
// directory, with forward slashes, for use in a markdown link.
func (p Paths) ArchiveLink() string {
	rel, err := filepath.Rel(filepath.Dir(p.Changelog), p.Archive)
	if err != nil {
		return filepath.ToSlash(p.Archive)
	}
	return filepath.ToSlash(rel)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
