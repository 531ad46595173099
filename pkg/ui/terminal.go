package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// ASCIILogo is printed at the start of an interactive crawl
const ASCIILogo = `
    ╔═══════════════════════════════════════════════╗
    ║  ┏━╸┏━╸┏━╸╺┳┓╻ ╻┏━┓┏━┓╻ ╻┏━╸┏━┓╺┳╸            ║
    ║  ┣╸ ┣╸ ┣╸  ┃┃┣━┫┣━┫┣┳┛┃┏┛┣╸ ┗━┓ ┃             ║
    ║  ╹  ┗━╸┗━╸╺┻┛╹ ╹╹ ╹╹┗╸┗┛ ┗━╸┗━┛ ╹             ║
    ║          live feed harvester                  ║
    ╚═══════════════════════════════════════════════╝
`

var (
	quiet   atomic.Bool
	noColor atomic.Bool
	out     io.Writer = os.Stdout
)

func init() {
	noColor.Store(!term.IsTerminal(int(os.Stdout.Fd())))
}

// SetQuietMode suppresses all console output from this package
func SetQuietMode(q bool) {
	quiet.Store(q)
}

// IsQuietMode reports whether console output is suppressed
func IsQuietMode() bool {
	return quiet.Load()
}

// SetColor forces ANSI colors on or off
func SetColor(enabled bool) {
	noColor.Store(!enabled)
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if noColor.Load() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func printf(format string, args ...interface{}) {
	if quiet.Load() {
		return
	}
	fmt.Fprintf(out, format, args...)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	printf("%s", Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	printf("%s\n", Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printf("%s\n", Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	printf("%s\n", Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printf("%s\n", Magenta(msg))
}
