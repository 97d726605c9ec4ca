package domain

import "strings"

// Operator glyphs accepted on the keypad. The ASCII forms are accepted as
// aliases so keyboard input behaves like the keypad.
const (
	GlyphPlus      = "+"
	GlyphMinus     = "-"
	GlyphMinusSign = "−"
	GlyphTimes     = "×"
	GlyphTimesX    = "x"
	GlyphStar      = "*"
	GlyphSlash     = "/"
	GlyphDivide    = "÷"

	// TokenPower is the exponentiation operator. It is not an operator glyph
	// for substitution purposes.
	TokenPower = "**"
	// TokenMod is the modulo operator.
	TokenMod = "%"
)

var operatorGlyphs = map[string]bool{
	GlyphPlus:      true,
	GlyphMinus:     true,
	GlyphMinusSign: true,
	GlyphTimes:     true,
	GlyphTimesX:    true,
	GlyphStar:      true,
	GlyphSlash:     true,
	GlyphDivide:    true,
}

// IsOperator reports whether s is a single binary operator glyph.
func IsOperator(s string) bool {
	return operatorGlyphs[s]
}

// IsMinus reports whether s is a minus glyph (ASCII or U+2212).
func IsMinus(s string) bool {
	return s == GlyphMinus || s == GlyphMinusSign
}

var glyphReplacer = strings.NewReplacer(
	GlyphTimesX, GlyphStar,
	GlyphTimes, GlyphStar,
	GlyphDivide, GlyphSlash,
	GlyphMinusSign, GlyphMinus,
)

// NormalizeGlyphs maps display glyphs onto evaluator operators.
func NormalizeGlyphs(expr string) string {
	return glyphReplacer.Replace(expr)
}
