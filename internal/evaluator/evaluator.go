package evaluator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyExpression is returned when there is nothing to evaluate.
var ErrEmptyExpression = errors.New("empty expression")

// SyntaxError reports malformed arithmetic text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// Evaluator implements ports.Evaluator.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate parses and computes expr.
func (e *Evaluator) Evaluate(expr string) (float64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, ErrEmptyExpression
	}
	toks, err := lex(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{toks: toks}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, p.unexpected(t)
	}
	return v, nil
}

// Evaluate is a convenience wrapper around a zero-value Evaluator.
func Evaluate(expr string) (float64, error) {
	return (&Evaluator{}).Evaluate(expr)
}
