// changelog-sync regenerates CHANGELOG.md and its archive from the feature
// log, the repository's release tags and GitHub releases.
package main

import (
	"os"

	"github.com/dragonshield/changelog-sync/internal/cli"
	"github.com/dragonshield/changelog-sync/internal/cli/shared"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(shared.ExitCode(err))
	}
}
