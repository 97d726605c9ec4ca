package runtime

import (
	"context"
	"fmt"
	"math"

	"github.com/aretw0/abacus/pkg/domain"
)

// unaryFunc maps an operand onto a result. A non-empty kind reports a
// domain failure.
type unaryFunc func(x float64) (float64, domain.ErrorKind)

func plain(fn func(float64) float64) unaryFunc {
	return func(x float64) (float64, domain.ErrorKind) {
		return fn(x), ""
	}
}

func call(name string) func(string) string {
	return func(num string) string { return fmt.Sprintf("%s(%s)", name, num) }
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func trig(fn func(float64) float64) unaryFunc {
	return plain(func(x float64) float64 { return fn(degToRad(x)) })
}

// reciprocal returns 1/fn(x) and fails on a zero denominator.
func reciprocal(fn func(float64) float64) unaryFunc {
	return func(x float64) (float64, domain.ErrorKind) {
		d := fn(degToRad(x))
		if d == 0 {
			return 0, domain.KindDivideByZero
		}
		return 1 / d, ""
	}
}

// scientific evaluates the expression, applies fn and finalizes the result.
// A malformed expression fails as Generic.
func (e *Engine) scientific(ctx context.Context, op string, notation func(string) string, fn unaryFunc) error {
	return e.scientificAs(ctx, op, domain.KindGeneric, notation, fn)
}

// scientificAs is scientific with the kind reported for a malformed
// expression.
func (e *Engine) scientificAs(ctx context.Context, op string, malformed domain.ErrorKind, notation func(string) string, fn unaryFunc) error {
	x, err := e.evaluateExpression(ctx, op, malformed)
	if err != nil {
		return err
	}
	result, kind := fn(x)
	if kind != "" {
		return e.fail(ctx, op, kind, nil)
	}
	if !isFinite(result) {
		return e.fail(ctx, op, domain.KindMathDomain, nil)
	}
	return e.finalize(ctx, op, notation(domain.FormatNumber(x)), result)
}

// finalize shows notation on the input display and result on the output
// display, records both and makes the result the new expression.
func (e *Engine) finalize(ctx context.Context, op, notation string, result float64) error {
	s := e.state
	formatted := domain.FormatNumber(result)
	e.setInput(notation)
	e.setOutput(formatted)
	e.record(ctx, op, notation, result)

	s.Expression = formatted
	s.SetLastResult(result)
	s.Evaluated = true
	s.Scientific = true

	e.emitResult(ctx, op, domain.SourceScientific, formatted, result)
	return nil
}

// Sin computes the sine of the expression in degrees.
func (e *Engine) Sin(ctx context.Context) error {
	return e.scientific(ctx, "sin", call("sin"), trig(math.Sin))
}

// Cos computes the cosine of the expression in degrees.
func (e *Engine) Cos(ctx context.Context) error {
	return e.scientific(ctx, "cos", call("cos"), trig(math.Cos))
}

// Tan computes the tangent of the expression in degrees.
func (e *Engine) Tan(ctx context.Context) error {
	return e.scientific(ctx, "tan", call("tan"), trig(math.Tan))
}

// Sec computes 1/cos of the expression in degrees.
func (e *Engine) Sec(ctx context.Context) error {
	return e.scientific(ctx, "sec", call("sec"), reciprocal(math.Cos))
}

// Csc computes 1/sin of the expression in degrees.
func (e *Engine) Csc(ctx context.Context) error {
	return e.scientific(ctx, "csc", call("csc"), reciprocal(math.Sin))
}

// Cot computes 1/tan of the expression in degrees.
func (e *Engine) Cot(ctx context.Context) error {
	return e.scientific(ctx, "cot", call("cot"), reciprocal(math.Tan))
}

// Sqrt computes the square root. Any failure is a math error.
func (e *Engine) Sqrt(ctx context.Context) error {
	return e.scientificAs(ctx, "sqrt", domain.KindMathDomain, call("√"), func(x float64) (float64, domain.ErrorKind) {
		if x < 0 {
			return 0, domain.KindMathDomain
		}
		return math.Sqrt(x), ""
	})
}

// Square computes x².
func (e *Engine) Square(ctx context.Context) error {
	return e.scientific(ctx, "square",
		func(num string) string { return "(" + num + ")²" },
		plain(func(x float64) float64 { return x * x }))
}

// Inverse computes 1/x.
func (e *Engine) Inverse(ctx context.Context) error {
	return e.scientific(ctx, "inverse",
		func(num string) string { return "1/(" + num + ")" },
		func(x float64) (float64, domain.ErrorKind) {
			if x == 0 {
				return 0, domain.KindDivideByZero
			}
			return 1 / x, ""
		})
}

// Log computes the base-10 logarithm. Any failure is a math error.
func (e *Engine) Log(ctx context.Context) error {
	return e.scientificAs(ctx, "log", domain.KindMathDomain, call("log"), positive(math.Log10))
}

// Ln computes the natural logarithm. Any failure is a math error.
func (e *Engine) Ln(ctx context.Context) error {
	return e.scientificAs(ctx, "ln", domain.KindMathDomain, call("ln"), positive(math.Log))
}

func positive(fn func(float64) float64) unaryFunc {
	return func(x float64) (float64, domain.ErrorKind) {
		if x <= 0 {
			return 0, domain.KindMathDomain
		}
		return fn(x), ""
	}
}

// Factorial computes n! for non-negative integers. Any failure is a math
// error.
func (e *Engine) Factorial(ctx context.Context) error {
	return e.scientificAs(ctx, "factorial", domain.KindMathDomain,
		func(num string) string { return num + "!" },
		factorial)
}

// maxFactorial is the largest n whose factorial is a finite float64.
const maxFactorial = 170

func factorial(x float64) (float64, domain.ErrorKind) {
	if x < 0 || x != math.Floor(x) || x > maxFactorial {
		return 0, domain.KindMathDomain
	}
	result := 1.0
	for i := 2.0; i <= x; i++ {
		result *= i
	}
	return result, ""
}

// TenPower computes 10^x.
func (e *Engine) TenPower(ctx context.Context) error {
	return e.scientific(ctx, "tenpow", call("10^"), plain(func(x float64) float64 { return math.Pow(10, x) }))
}

// TwoPower computes 2^x.
func (e *Engine) TwoPower(ctx context.Context) error {
	return e.scientific(ctx, "twopow", call("2^"), plain(func(x float64) float64 { return math.Pow(2, x) }))
}

// Exp computes e^x.
func (e *Engine) Exp(ctx context.Context) error {
	return e.scientific(ctx, "exp", call("exp"), plain(math.Exp))
}

// Abs computes the absolute value.
func (e *Engine) Abs(ctx context.Context) error {
	return e.scientific(ctx, "abs",
		func(num string) string { return "|" + num + "|" },
		plain(math.Abs))
}

// Floor rounds down.
func (e *Engine) Floor(ctx context.Context) error {
	return e.scientific(ctx, "floor", call("floor"), plain(math.Floor))
}

// Ceil rounds up.
func (e *Engine) Ceil(ctx context.Context) error {
	return e.scientific(ctx, "ceil", call("ceil"), plain(math.Ceil))
}

// Rand finalizes a fresh random value in [0, 1) without reading the expression.
func (e *Engine) Rand(ctx context.Context) error {
	return e.finalize(ctx, "rand", "rand()", e.random())
}
