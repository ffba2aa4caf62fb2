// Package output provides terminal output formatting utilities for gxctl.
// The init conversation on stdout is printed through these helpers.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Tagline is printed under the banner on every init run.
const Tagline = "Always know what to expect from your data."

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintBanner prints the centered tool banner followed by the tagline.
// Uses cyan rules around the title.
func PrintBanner(out io.Writer, title string) {
	termWidth := GetTerminalWidth()
	if termWidth > 72 {
		termWidth = 72
	}
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	label := " " + title + " "
	lineLen := (termWidth - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}

	line := strings.Repeat("─", lineLen)
	fmt.Fprintf(out, "\n%s%s%s\n", dim(line), cyan(label), dim(line))
	fmt.Fprintf(out, "%s\n", center(Tagline, 2*lineLen+len(label)))
}

func center(s string, width int) string {
	if pad := (width - len(s)) / 2; pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

// PrintSectionHeader prints a bold section title with an underline.
func PrintSectionHeader(out io.Writer, title string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "\n%s\n%s\n", bold(title), strings.Repeat("=", len(title)))
}

// PrintStep prints a progress line for a step that is starting
// (e.g., "Profiling Titanic...").
func PrintStep(out io.Writer, message string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan("→"), message)
}

// PrintSuccess prints a green checkmark line.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintWarning prints a yellow warning line.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("⚠"), message)
}

// PrintInfo prints an indented, dimmed detail line.
func PrintInfo(out io.Writer, message string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "    %s\n", dim(message))
}

// Highlight returns s in cyan for inline emphasis of names and paths.
func Highlight(s string) string {
	return color.New(color.FgCyan).Sprint(s)
}
