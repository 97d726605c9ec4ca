package ports

// Evaluator evaluates normalized arithmetic text (digits, parentheses,
// +, -, *, /, %, **) to a number. Non-finite results are returned as values,
// not errors; callers decide how to report them.
type Evaluator interface {
	Evaluate(expr string) (float64, error)
}
