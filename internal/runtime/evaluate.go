package runtime

import (
	"context"
	"regexp"
	"strconv"

	"github.com/aretw0/abacus/pkg/domain"
)

var (
	parenParen = regexp.MustCompile(`\)\(`)
	digitParen = regexp.MustCompile(`(\d)\(`)
	parenDigit = regexp.MustCompile(`\)(\d)`)
	trailingOp = regexp.MustCompile(`(.+)([+\-*/])(\d+(\.\d+)?)$`)
)

// Normalize maps display glyphs onto evaluator operators and makes implicit
// multiplication explicit: ")(" , "digit(" and ")digit".
func Normalize(expr string) string {
	out := domain.NormalizeGlyphs(expr)
	out = parenParen.ReplaceAllString(out, ")*(")
	out = digitParen.ReplaceAllString(out, "${1}*(")
	out = parenDigit.ReplaceAllString(out, ")*${1}")
	return out
}

// Evaluate computes the expression. Immediately after a plain result it
// instead re-applies the last binary operation to that result.
func (e *Engine) Evaluate(ctx context.Context) error {
	s := e.state
	if open, closed := bracketCounts(s.Expression); open != closed {
		return e.fail(ctx, "evaluate", domain.KindUnmatchedBrackets, nil)
	}

	if s.Evaluated && !s.Scientific && s.Repeat.Operator != "" && s.Repeat.Operand != "" && s.Repeat.Result != nil {
		return e.repeat(ctx)
	}

	if s.Expression == "" {
		return e.fail(ctx, "evaluate", domain.KindDivideByZero, nil)
	}

	normalized := Normalize(s.Expression)
	result, err := e.evaluator.Evaluate(normalized)
	if err != nil {
		return e.fail(ctx, "evaluate", domain.KindGeneric, err)
	}
	if !isFinite(result) {
		return e.fail(ctx, "evaluate", domain.KindDivideByZero, nil)
	}

	if m := trailingOp.FindStringSubmatch(normalized); m != nil {
		s.Repeat.Operator = m[2]
		s.Repeat.Operand = m[3]
	}

	// The expression text is what the output display showed before this
	// call, unless a failure message replaced it.
	shown := s.Expression
	formatted := domain.FormatNumber(result)
	e.setInput(shown)
	e.setOutput(formatted)

	if !s.Scientific {
		e.record(ctx, "evaluate", shown, result)
	}

	s.SetLastResult(result)
	s.Expression = ""
	s.Evaluated = true
	s.Scientific = false

	e.emitResult(ctx, "evaluate", domain.SourceEvaluate, formatted, result)
	return nil
}

func (e *Engine) repeat(ctx context.Context) error {
	s := e.state
	last, _ := s.LastResult()
	operand, err := strconv.ParseFloat(s.Repeat.Operand, 64)
	if err != nil {
		return e.fail(ctx, "evaluate", domain.KindGeneric, err)
	}

	var result float64
	switch s.Repeat.Operator {
	case domain.GlyphPlus:
		result = last + operand
	case domain.GlyphMinus:
		result = last - operand
	case domain.GlyphStar:
		result = last * operand
	case domain.GlyphSlash:
		if operand == 0 {
			return e.fail(ctx, "evaluate", domain.KindDivideByZero, nil)
		}
		result = last / operand
	default:
		return e.fail(ctx, "evaluate", domain.KindGeneric, nil)
	}
	if !isFinite(result) {
		return e.fail(ctx, "evaluate", domain.KindDivideByZero, nil)
	}

	formatted := domain.FormatNumber(result)
	s.SetLastResult(result)
	e.setOutput(formatted)
	e.emitResult(ctx, "evaluate", domain.SourceRepeat, formatted, result)
	return nil
}
