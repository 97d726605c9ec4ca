// Package evaluator implements the arithmetic evaluator behind the
// calculator: a lexer and a recursive-descent parser over
// +, -, *, /, %, ** and parentheses.
//
// Precedence, highest first: unary + and -, then ** (right-associative),
// then *, / and % (left-associative), then binary + and - (left-associative).
// Division by zero is not an error here; it yields ±Inf or NaN, and the
// caller decides how to report non-finite results.
package evaluator
