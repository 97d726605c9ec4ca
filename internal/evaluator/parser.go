package evaluator

import (
	"fmt"
	"math"
)

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s", t.kind)}
}

// parseExpr: term (('+' | '-') term)*
func (p *parser) parseExpr() (float64, error) {
	val, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != tokPlus && op.kind != tokMinus {
			return val, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op.kind == tokPlus {
			val += right
		} else {
			val -= right
		}
	}
}

// parseTerm: power (('*' | '/' | '%') power)*
func (p *parser) parseTerm() (float64, error) {
	val, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != tokStar && op.kind != tokSlash && op.kind != tokPercent {
			return val, nil
		}
		p.next()
		right, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		switch op.kind {
		case tokStar:
			val *= right
		case tokSlash:
			val /= right
		case tokPercent:
			val = math.Mod(val, right)
		}
	}
}

// parsePower: unary ('**' power)?
func (p *parser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

// parseUnary: ('+' | '-') unary | primary
func (p *parser) parseUnary() (float64, error) {
	switch p.peek().kind {
	case tokPlus:
		p.next()
		return p.parseUnary()
	case tokMinus:
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

// parsePrimary: number | '(' expr ')'
func (p *parser) parsePrimary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.value, nil
	case tokLParen:
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		closing := p.next()
		if closing.kind != tokRParen {
			return 0, &SyntaxError{Pos: closing.pos, Msg: fmt.Sprintf("expected ')', found %s", closing.kind)}
		}
		return v, nil
	}
	return 0, p.unexpected(t)
}
