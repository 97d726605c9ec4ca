package runtime

import (
	"context"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// Append adds a keypad token (digit, ".", operator glyph, bracket or space)
// to the expression.
func (e *Engine) Append(ctx context.Context, token string) error {
	s := e.state
	isOp := domain.IsOperator(token)

	// A new operand after a result starts a fresh expression.
	if s.Evaluated && !isOp {
		s.Expression = ""
		e.setOutput("")
		s.Evaluated = false
	}

	if token == ")" {
		open, closed := bracketCounts(s.Expression)
		if open == 0 {
			return e.fail(ctx, "append", domain.KindNoOpeningBracket, nil)
		}
		if closed >= open {
			return nil
		}
	}

	if isOp && s.Evaluated && s.Expression == "" {
		if last, ok := s.LastResult(); ok {
			s.Expression = domain.FormatNumber(last)
		}
	}

	if isOp && domain.IsOperator(lastRune(s.Expression)) {
		s.Expression = trimLastRune(s.Expression) + token
		e.setOutput(s.Expression)
		s.Evaluated = false
		return nil
	}

	if isOp && s.Expression == "" && !domain.IsMinus(token) {
		return nil
	}

	if token == "." && strings.Contains(currentOperand(s.Expression), ".") {
		return nil
	}

	s.Expression += token
	e.setOutput(s.Expression)
	s.Evaluated = false
	return nil
}

func bracketCounts(expr string) (open, closed int) {
	return strings.Count(expr, "("), strings.Count(expr, ")")
}

// currentOperand returns the text after the last operator glyph.
func currentOperand(expr string) string {
	idx := strings.LastIndexFunc(expr, func(r rune) bool {
		return domain.IsOperator(string(r))
	})
	if idx < 0 {
		return expr
	}
	return expr[idx:]
}
