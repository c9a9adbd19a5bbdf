package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the CLI.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Next upcoming event: bold green so it stands out in the list
	colorNext = color.New(color.FgGreen, color.Bold)

	// Selected entry: reverse video
	colorSelected = color.New(color.ReverseVideo)

	// Overflow bucket: yellow
	colorOverflow = color.New(color.FgYellow)

	// Warnings such as an unreachable calendar
	colorWarn = color.New(color.FgRed)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatNext(s string) string {
	return colorNext.Sprint(s)
}

func formatSelected(s string) string {
	return colorSelected.Sprint(s)
}

func formatOverflow(s string) string {
	return colorOverflow.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
