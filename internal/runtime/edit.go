package runtime

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// Clear resets the session to its initial state and blanks both displays.
func (e *Engine) Clear(ctx context.Context) error {
	e.state = domain.NewState(e.state.SessionID)
	e.setInput("")
	e.setOutput("")
	e.logger.Debug("cleared", "session_id", e.state.SessionID)
	return nil
}

// ClearEntry empties the expression and the output display. Flags and the
// repeat state are kept.
func (e *Engine) ClearEntry(ctx context.Context) error {
	e.state.Expression = ""
	e.setOutput("")
	return nil
}

// Backspace removes the last character of the expression.
func (e *Engine) Backspace(ctx context.Context) error {
	e.state.Expression = trimLastRune(e.state.Expression)
	e.setOutput(e.state.Expression)
	return nil
}

// ToggleSign adds or removes a single leading minus. It is a no-op on an
// empty expression.
func (e *Engine) ToggleSign(ctx context.Context) error {
	s := e.state
	if s.Expression == "" {
		return nil
	}
	if strings.HasPrefix(s.Expression, domain.GlyphMinus) {
		s.Expression = strings.TrimPrefix(s.Expression, domain.GlyphMinus)
	} else {
		s.Expression = domain.GlyphMinus + s.Expression
	}
	e.setOutput(s.Expression)
	return nil
}

// Mod appends the modulo operator to a non-empty expression.
func (e *Engine) Mod(ctx context.Context) error {
	if e.state.Expression == "" {
		return nil
	}
	return e.appendRaw(domain.TokenMod)
}

// Power appends the exponent operator unless it is already trailing.
func (e *Engine) Power(ctx context.Context) error {
	if strings.HasSuffix(e.state.Expression, domain.TokenPower) {
		return nil
	}
	return e.appendRaw(domain.TokenPower)
}

func (e *Engine) appendRaw(token string) error {
	e.state.Expression += token
	e.setOutput(e.state.Expression)
	e.state.Evaluated = false
	return nil
}

// DegreesMinutesSeconds shows the expression's decimal degrees as D° M' S".
func (e *Engine) DegreesMinutesSeconds(ctx context.Context) error {
	if e.state.Expression == "" {
		return nil
	}
	deg, err := e.evaluateExpression(ctx, "dms", domain.KindGeneric)
	if err != nil {
		return err
	}
	if !isFinite(deg) {
		return e.fail(ctx, "dms", domain.KindDivideByZero, nil)
	}

	d := math.Floor(deg)
	minutes := (deg - d) * 60
	m := math.Floor(minutes)
	sec := math.Floor((minutes - m) * 60)

	text := fmt.Sprintf("%s° %s' %s\"", domain.FormatNumber(d), domain.FormatNumber(m), domain.FormatNumber(sec))
	e.setInput(domain.FormatNumber(deg) + "°")
	e.setOutput(text)
	e.emitResult(ctx, "dms", domain.SourceEdit, text, deg)
	return nil
}

// Degrees reads a space-separated "D M S" expression and converts it to
// decimal degrees. Missing or unparsable parts count as zero.
func (e *Engine) Degrees(ctx context.Context) error {
	s := e.state
	parts := strings.Split(s.Expression, " ")
	part := func(i int) float64 {
		if i >= len(parts) {
			return 0
		}
		return leadingNumber(parts[i])
	}

	result := part(0) + part(1)/60 + part(2)/3600
	if !isFinite(result) {
		return e.fail(ctx, "deg", domain.KindGeneric, nil)
	}

	formatted := domain.FormatNumber(result)
	e.setOutput(formatted)
	s.Expression = formatted
	e.emitResult(ctx, "deg", domain.SourceEdit, formatted, result)
	return nil
}

// AbsNoHistory is the absolute value without a history entry or mode change.
func (e *Engine) AbsNoHistory(ctx context.Context) error {
	x, err := e.evaluateExpression(ctx, "modx", domain.KindGeneric)
	if err != nil {
		return err
	}
	result := math.Abs(x)
	if !isFinite(result) {
		return e.fail(ctx, "modx", domain.KindMathDomain, nil)
	}

	formatted := domain.FormatNumber(result)
	e.setInput("|" + domain.FormatNumber(x) + "|")
	e.setOutput(formatted)
	e.state.Expression = formatted
	e.emitResult(ctx, "modx", domain.SourceEdit, formatted, result)
	return nil
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// leadingNumber parses the longest numeric prefix of s, or 0 if there is none.
func leadingNumber(s string) float64 {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Paste replaces the expression with text, as if it had been typed.
// No keypad rules are applied.
func (e *Engine) Paste(ctx context.Context, text string) error {
	e.state.Expression = text
	e.state.Evaluated = false
	e.setOutput(text)
	return nil
}
