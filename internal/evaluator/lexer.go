package evaluator

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPercent:
		return "'%'"
	case tokPow:
		return "'**'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "unknown"
}

type token struct {
	kind  tokenKind
	pos   int
	value float64
	text  string
}

// lex splits expr into tokens. Numbers accept "12", "1.5", ".5", "5." and an
// optional exponent ("1e+21").
func lex(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, pos: i, text: "+"})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, pos: i, text: "-"})
			i++
		case c == '*':
			if i+1 < len(expr) && expr[i+1] == '*' {
				toks = append(toks, token{kind: tokPow, pos: i, text: "**"})
				i += 2
				continue
			}
			toks = append(toks, token{kind: tokStar, pos: i, text: "*"})
			i++
		case c == '/':
			toks = append(toks, token{kind: tokSlash, pos: i, text: "/"})
			i++
		case c == '%':
			toks = append(toks, token{kind: tokPercent, pos: i, text: "%"})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i, text: ")"})
			i++
		case isDigit(c) || c == '.':
			tok, next, err := lexNumber(expr, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", rune(c))}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(expr)})
	return toks, nil
}

func lexNumber(expr string, start int) (token, int, error) {
	j := start
	digits := 0
	for j < len(expr) && isDigit(expr[j]) {
		j++
		digits++
	}
	if j < len(expr) && expr[j] == '.' {
		j++
		for j < len(expr) && isDigit(expr[j]) {
			j++
			digits++
		}
	}
	if digits == 0 {
		return token{}, 0, &SyntaxError{Pos: start, Msg: "malformed number"}
	}
	if j < len(expr) && (expr[j] == 'e' || expr[j] == 'E') {
		k := j + 1
		if k < len(expr) && (expr[k] == '+' || expr[k] == '-') {
			k++
		}
		expDigits := 0
		for k < len(expr) && isDigit(expr[k]) {
			k++
			expDigits++
		}
		if expDigits == 0 {
			return token{}, 0, &SyntaxError{Pos: j, Msg: "malformed exponent"}
		}
		j = k
	}
	if j < len(expr) && expr[j] == '.' {
		return token{}, 0, &SyntaxError{Pos: j, Msg: "unexpected '.'"}
	}

	text := expr[start:j]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// ParseFloat reports out-of-range values with ±Inf; keep them.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return token{}, 0, &SyntaxError{Pos: start, Msg: fmt.Sprintf("malformed number %q", text)}
		}
	}
	return token{kind: tokNumber, pos: start, value: v, text: text}, j, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
