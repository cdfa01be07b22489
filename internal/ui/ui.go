package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(os.Stderr, "✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(os.Stderr, "✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "⚠ %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Fprintln(os.Stderr, message)
}

// ShowMuted displays a low-emphasis status message without a newline
func ShowMuted(message string) {
	gray := color.New(color.FgHiBlack)
	gray.Fprint(os.Stderr, message)
}

// DisplayCommand renders the proposed command the way a shell prompt would
func DisplayCommand(command string) {
	cyan := color.New(color.FgCyan)
	white := color.New(color.FgHiWhite, color.Bold)
	cyan.Fprint(os.Stderr, "$ ")
	white.Fprintln(os.Stderr, command)
}

// StartSpinner shows an activity spinner with the given message and returns
// a stop function. Output goes to stderr so captured stdout stays clean for
// the shell wrapper.
func StartSpinner(message string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

// FormatMarkdown renders markdown for terminal display, falling back to the
// raw text if rendering fails.
func FormatMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

// Debugf prints a debug line to stderr when enabled
func Debugf(enabled bool, format string, args ...any) {
	if enabled {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}
