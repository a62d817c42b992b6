package changelog

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps categories to their terminal styling.
var categoryStyles = map[Category]CategoryStyle{
	Added:   {Color: color.New(color.FgGreen), Icon: "✓"},
	Changed: {Color: color.New(color.FgBlue), Icon: "~"},
	Fixed:   {Color: color.New(color.FgYellow), Icon: "⚡"},
	Removed: {Color: color.New(color.FgRed), Icon: "✗"},
	Notes:   {Color: color.New(color.FgMagenta), Icon: "•"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain bool // Disable colors and icons
}

// SummaryLine is the per-section row of a sync summary.
type SummaryLine struct {
	Section string
	Counts  map[Category]int
}

// Total returns the number of entries across all categories.
func (s SummaryLine) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Summarize counts assigned entries per section: unreleased first, then
// every tag that received at least one entry, newest effective date first.
func Summarize(tags []Tag, releases map[string]Release, a Assignment) []SummaryLine {
	lines := []SummaryLine{{Section: "Unreleased", Counts: countCategories(a.Unreleased)}}

	for _, tag := range SortNewestFirst(tags, releases) {
		entries := a.ByTag[tag.Name]
		if len(entries) == 0 {
			continue
		}
		lines = append(lines, SummaryLine{Section: tag.Name, Counts: countCategories(entries)})
	}
	return lines
}

func countCategories(entries []Entry) map[Category]int {
	counts := make(map[Category]int)
	for _, e := range entries {
		counts[e.Category]++
	}
	return counts
}

// FormatSummary writes a one-line-per-section summary of an assignment.
func FormatSummary(lines []SummaryLine, w io.Writer, opts FormatOptions) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", formatSection(line, opts), formatCounts(line, opts)); err != nil {
			return fmt.Errorf("writing summary for %s: %w", line.Section, err)
		}
	}
	return nil
}

func formatSection(line SummaryLine, opts FormatOptions) string {
	if opts.Plain {
		return line.Section
	}
	return color.New(color.Bold).Sprint(line.Section)
}

// formatCounts renders "2 entries (Added 1, Fixed 1)".
func formatCounts(line SummaryLine, opts FormatOptions) string {
	total := line.Total()
	noun := "entries"
	if total == 1 {
		noun = "entry"
	}
	if total == 0 {
		return "0 entries"
	}

	var parts []string
	for _, cat := range CategoryOrder() {
		n := line.Counts[cat]
		if n == 0 {
			continue
		}
		if opts.Plain {
			parts = append(parts, fmt.Sprintf("%s %d", cat, n))
			continue
		}
		style := categoryStyles[cat]
		parts = append(parts, style.Color.Sprintf("%s %s %d", style.Icon, cat, n))
	}
	return fmt.Sprintf("%d %s (%s)", total, noun, strings.Join(parts, ", "))
}
