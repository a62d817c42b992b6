// Package util provides informational commands that need no repository.
package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/dragonshield/changelog-sync/internal/build"
	"github.com/dragonshield/changelog-sync/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// boxWidth is the outer width of the version box.
const boxWidth = 44

var versionPlain bool

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  "Display version, commit, build date, and Go version information for changelog-sync",
	Example: `  # Show version info
  changelog-sync version

  # Plain output (for scripts)
  changelog-sync version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := build.Current()
		if versionPlain {
			printPlainVersion(cmd.OutOrStdout(), info)
			return
		}
		printPrettyVersion(cmd.OutOrStdout(), info, output.GetTerminalWidth())
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer, info build.Info) {
	fmt.Fprintf(w, "changelog-sync %s\n", info.Version)
	fmt.Fprintf(w, "commit: %s\n", info.Commit)
	fmt.Fprintf(w, "built: %s\n", info.BuildDate)
	fmt.Fprintf(w, "go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "platform: %s\n", info.Platform)
}

// printPrettyVersion prints the build info in a centered box.
func printPrettyVersion(w io.Writer, info build.Info, termWidth int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	width := boxWidth
	if termWidth < width+6 {
		width = termWidth - 6
	}
	if width < 30 {
		width = 30
	}
	pad := ""
	if termWidth > width {
		pad = strings.Repeat(" ", (termWidth-width)/2)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
	}

	fmt.Fprintln(w)
	title := "changelog-sync"
	fmt.Fprintln(w, pad+strings.Repeat(" ", (width-len(title))/2)+cyan(title))
	fmt.Fprintln(w, pad+"╭"+strings.Repeat("─", width-2)+"╮")
	for _, row := range rows {
		// label (10) + gap (3) + value, inside "│ " and " │"
		used := 10 + 3 + len(row.value)
		fill := width - 4 - used
		if fill < 0 {
			fill = 0
		}
		fmt.Fprintf(w, "%s│ %s   %s%s │\n", pad, yellow(fmt.Sprintf("%10s", row.label)), white(row.value), strings.Repeat(" ", fill))
	}
	fmt.Fprintln(w, pad+"╰"+strings.Repeat("─", width-2)+"╯")
	fmt.Fprintln(w)
}
