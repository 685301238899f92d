package ui

import (
	"fmt"
	"os"
	"sync"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔══════════════════════════════════════════════════════════╗
    ║ ██████╗ ███████╗██╗  ██╗██╗   ██╗ ██████╗ ██████╗  █████╗ ║
    ║ ██╔══██╗██╔════╝██║ ██╔╝╚██╗ ██╔╝██╔════╝ ██╔══██╗██╔══██╗║
    ║ ██████╔╝███████╗█████╔╝  ╚████╔╝ ██║  ███╗██████╔╝███████║║
    ║ ██╔══██╗╚════██║██╔═██╗   ╚██╔╝  ██║   ██║██╔══██╗██╔══██║║
    ║ ██████╔╝███████║██║  ██╗   ██║   ╚██████╔╝██║  ██║██║  ██║║
    ║ ╚═════╝ ╚══════╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝║
    ║          BLUESKY SOCIAL GRAPH EXPLORER                    ║
    ╚══════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	mu        sync.Mutex
	quietMode bool
	noColor   bool
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if IsNoColor() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetQuietMode suppresses all output except errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is active
func IsQuietMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietMode
}

// SetNoColor disables ANSI color codes
func SetNoColor(disabled bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disabled
}

// IsNoColor reports whether color output is disabled
func IsNoColor() bool {
	mu.Lock()
	defer mu.Unlock()
	return noColor
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if IsQuietMode() {
		return
	}
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red to stderr
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(os.Stderr, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Println(Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Println(Magenta(msg))
}
