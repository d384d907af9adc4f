// Package color styles the dlh command-line output.
package color

import (
	"github.com/fatih/color"
)

var (
	promptColor    = color.New(color.FgCyan, color.Bold)
	infoColor      = color.New(color.FgGreen)
	warningColor   = color.New(color.FgYellow, color.Bold)
	errorColor     = color.New(color.FgRed, color.Bold)
	assistantColor = color.New(color.FgHiWhite)
	titleColor     = color.New(color.FgMagenta, color.Bold)
)

// Disable turns styling off, e.g. for --no-color or piped output.
// fatih/color already detects non-terminal stdout on its own.
func Disable() {
	color.NoColor = true
}

func Prompt(s string) string {
	return promptColor.Sprint(s)
}

func Info(s string) string {
	return infoColor.Sprint(s)
}

func Warning(s string) string {
	return warningColor.Sprint(s)
}

func Error(s string) string {
	return errorColor.Sprint(s)
}

func Assistant(s string) string {
	return assistantColor.Sprint(s)
}

func Title(s string) string {
	return titleColor.Sprint(s)
}
