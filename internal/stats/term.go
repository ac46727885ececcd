package stats

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	labelWidth          = 10
	minCurveWidth       = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
)

var curveColors = []string{"\x1b[36m", "\x1b[35m"}

// TerminalWidth returns the width of w when it is a terminal, else a
// default.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI colors should be written to w.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
