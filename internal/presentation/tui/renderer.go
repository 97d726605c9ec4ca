package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// defaultWrap is used when the terminal width cannot be read.
const defaultWrap = 80

// NewRenderer returns a function that renders markdown using glamour,
// word-wrapped to the width of stdout.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the width of stdout, or a default when it is not a
// terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWrap
	}
	return w
}
