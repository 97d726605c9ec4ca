package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`        _                          `, "#34d399"},
	{`   __ _| |__   __ _  ___ _   _ ___ `, "#2dd4bf"},
	{`  / _' | '_ \ / _' |/ __| | | / __|`, "#22d3ee"},
	{` | (_| | |_) | (_| | (__| |_| \__ \`, "#38bdf8"},
	{`  \__,_|_.__/ \__,_|\___|\__,_|___/`, "#60a5fa"},
}

// PrintBanner writes the abacus banner to w, coloured for the terminal's
// profile. Profiles without colour get plain text.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  type 'help' for keys, 'exit' to quit").Faint())
	fmt.Fprintln(w)
}
