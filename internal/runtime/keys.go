package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// ErrUnknownKey is returned by Press for keys that map to no operation.
var ErrUnknownKey = errors.New("unknown key")

type keyFunc func(*Engine, context.Context) error

var keyTable = map[string]keyFunc{
	"=":         (*Engine).Evaluate,
	"enter":     (*Engine).Evaluate,
	"c":         (*Engine).Clear,
	"clear":     (*Engine).Clear,
	"ce":        (*Engine).ClearEntry,
	"bs":        (*Engine).Backspace,
	"backspace": (*Engine).Backspace,
	"neg":       (*Engine).ToggleSign,
	"±":         (*Engine).ToggleSign,
	"mod":       (*Engine).Mod,
	"%":         (*Engine).Mod,
	"pow":       (*Engine).Power,
	"^":         (*Engine).Power,
	"**":        (*Engine).Power,
	"sin":       (*Engine).Sin,
	"cos":       (*Engine).Cos,
	"tan":       (*Engine).Tan,
	"sec":       (*Engine).Sec,
	"csc":       (*Engine).Csc,
	"cot":       (*Engine).Cot,
	"sqrt":      (*Engine).Sqrt,
	"sqr":       (*Engine).Square,
	"inv":       (*Engine).Inverse,
	"log":       (*Engine).Log,
	"ln":        (*Engine).Ln,
	"fact":      (*Engine).Factorial,
	"tenpow":    (*Engine).TenPower,
	"twopow":    (*Engine).TwoPower,
	"exp":       (*Engine).Exp,
	"abs":       (*Engine).Abs,
	"floor":     (*Engine).Floor,
	"ceil":      (*Engine).Ceil,
	"rand":      (*Engine).Rand,
	"dms":       (*Engine).DegreesMinutesSeconds,
	"deg":       (*Engine).Degrees,
	"modx":      (*Engine).AbsNoHistory,
	"space": func(e *Engine, ctx context.Context) error {
		return e.Append(ctx, " ")
	},
}

// IsAppendKey reports whether key is a keypad token handled by Append.
func IsAppendKey(key string) bool {
	if domain.IsOperator(key) {
		return true
	}
	switch key {
	case ".", "(", ")", " ":
		return true
	}
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

// IsKnownKey reports whether Press accepts key.
func IsKnownKey(key string) bool {
	if IsAppendKey(key) {
		return true
	}
	_, ok := keyTable[strings.ToLower(key)]
	return ok
}

// Press dispatches a single key to the matching operation. Keypad tokens
// are appended; named keys are matched case-insensitively.
func (e *Engine) Press(ctx context.Context, key string) error {
	if IsAppendKey(key) {
		return e.Append(ctx, key)
	}
	if fn, ok := keyTable[strings.ToLower(key)]; ok {
		return fn(e, ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// SplitKeys turns one word of user input into keys. A named key is kept
// whole; anything else is split into keypad runes, with "**" kept together.
func SplitKeys(word string) []string {
	if _, ok := keyTable[strings.ToLower(word)]; ok {
		return []string{word}
	}
	runes := []rune(word)
	keys := make([]string, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '*' {
			keys = append(keys, domain.TokenPower)
			i++
			continue
		}
		keys = append(keys, string(runes[i]))
	}
	return keys
}

// KeyNames returns the named keys accepted by Press, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(keyTable))
	for k := range keyTable {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
