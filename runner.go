package abacus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// DefaultHistoryLimit is how many entries the history command shows.
const DefaultHistoryLimit = 10

// Runner drives a Calculator from line-oriented input.
// It is the REPL behind the CLI and is easy to script in tests.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// History backs the history command. Optional.
	History      ports.HistoryStore
	HistoryLimit int
}

// ContentRenderer transforms Markdown help and history before printing,
// e.g. into ANSI for a terminal.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{HistoryLimit: DefaultHistoryLimit}
}

// Run reads lines until EOF, "exit" or "quit", or until ctx is done.
// After each line it prints "input | output", or only the output when
// Headless.
func (r *Runner) Run(ctx context.Context, calc *Calculator) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}

		text, err := lines.ReadString('\n')
		line := strings.TrimSpace(text)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		eof := err != nil

		switch strings.ToLower(line) {
		case "":
		case "exit", "quit":
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		case "help":
			r.print(HelpMarkdown())
		case "history":
			r.printHistory(ctx)
		default:
			if err := calc.Type(ctx, line); err != nil && domain.KindOf(err) == "" {
				fmt.Fprintln(r.Output, err)
			}
			r.printDisplay(calc.Display())
		}

		if eof {
			return nil
		}
	}
}

func (r *Runner) printDisplay(d domain.Display) {
	if r.Headless {
		fmt.Fprintln(r.Output, d.Output)
		return
	}
	fmt.Fprintf(r.Output, "%s | %s\n", d.Input, d.Output)
}

func (r *Runner) print(markdown string) {
	out := markdown
	if r.Renderer != nil {
		if rendered, err := r.Renderer(markdown); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimRight(out, "\n"))
}

func (r *Runner) printHistory(ctx context.Context) {
	if r.History == nil {
		fmt.Fprintln(r.Output, "history is not enabled")
		return
	}
	entries, err := r.History.List(ctx, r.HistoryLimit)
	if err != nil {
		fmt.Fprintf(r.Output, "history unavailable: %v\n", err)
		return
	}
	r.print(HistoryMarkdown(entries))
}

// HistoryMarkdown renders entries as a Markdown list.
func HistoryMarkdown(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "_No history yet._\n"
	}
	var b strings.Builder
	b.WriteString("## History\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- `%s` = **%s**\n", e.Expression, domain.FormatNumber(e.Result))
	}
	return b.String()
}

// HelpMarkdown documents the REPL input syntax and key names.
func HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# abacus\n\n")
	b.WriteString("Type digits, `.`, brackets and operators (`+ - x × * / ÷ **`) as they appear on a keypad. ")
	b.WriteString("Separate named keys with spaces, e.g. `9 sqrt` or `3+2 = =`.\n\n")
	b.WriteString("Commands: `help`, `history`, `exit`.\n\n")
	b.WriteString("## Keys\n\n")
	for _, k := range runtime.KeyNames() {
		fmt.Fprintf(&b, "`%s` ", k)
	}
	b.WriteString("\n")
	return b.String()
}
