// Package ui renders gantry's console output: stage banners that precede
// each bootstrap phase and aligned tables for diagnostic listings.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var bannerStyle = lipgloss.NewStyle().Bold(true)

// Banner prints a stage header. Styling is applied only when the writer is
// a terminal, so logs captured from batch runs stay plain.
func Banner(out io.Writer, label string) {
	line := "=== " + label + " ==="
	if isTerminal(out) {
		line = bannerStyle.Render(line)
	}
	_, _ = fmt.Fprintln(out, line)
}

// Warnf prints a non-fatal warning.
func Warnf(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, "warning: "+format+"\n", args...)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
