// Package output provides terminal output formatting utilities for the
// changelog-sync commands.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark followed by message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintNotice prints a yellow "!" followed by message, with an optional
// dimmed hint.
func PrintNotice(out io.Writer, message, hint string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	if hint == "" {
		fmt.Fprintf(out, "%s %s\n", yellow("!"), message)
		return
	}
	fmt.Fprintf(out, "%s %s %s\n", yellow("!"), message, dim(hint))
}

// PrintWarning prints message in yellow. Warnings never change the exit code.
func PrintWarning(out io.Writer, message string) {
	fmt.Fprintln(out, color.YellowString(message))
}
