// Package runtime implements the calculator's expression state machine.
//
// The Engine accumulates keypad tokens into an expression, evaluates it
// through a ports.Evaluator, applies scientific functions and reports every
// failure both as a returned *domain.CalcError and as a message on the
// output display. Hosts drive it either through the typed operations or
// through Press, which maps key names onto them.
package runtime
