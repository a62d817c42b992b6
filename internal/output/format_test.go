// Package output tests terminal output helpers.
// Related: internal/output/format.go
// Tags: output, terminal, formatting

package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrintHelpers(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	tests := map[string]struct {
		print func(*bytes.Buffer)
		want  string
	}{
		"success": {
			print: func(b *bytes.Buffer) { PrintSuccess(b, "Wrote CHANGELOG.md") },
			want:  "✓ Wrote CHANGELOG.md\n",
		},
		"notice with hint": {
			print: func(b *bytes.Buffer) { PrintNotice(b, "config exists", "(use --force)") },
			want:  "! config exists (use --force)\n",
		},
		"notice without hint": {
			print: func(b *bytes.Buffer) { PrintNotice(b, "legacy file ignored", "") },
			want:  "! legacy file ignored\n",
		},
		"warning": {
			print: func(b *bytes.Buffer) { PrintWarning(b, "Warning: VERSION is 1.1.0 but latest tag is v1.2.0.") },
			want:  "Warning: VERSION is 1.1.0 but latest tag is v1.2.0.\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestGetTerminalWidth(t *testing.T) {
	t.Parallel()
	assert.Positive(t, GetTerminalWidth())
}
