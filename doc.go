/*
Package abacus is a calculator engine built around an expression state
machine.

Keys accumulate into an arithmetic expression that is shown on an output
display; evaluating it moves the expression to the input display and shows
the result. Pressing equals again repeats the last binary operation.
Scientific functions (trigonometry in degrees, roots, logarithms, factorial,
powers, rounding) operate on the value of the current expression and record
an annotated entry such as `√(9)` in the history.

The engine is hexagonal: displays, history and session storage are ports
(see pkg/ports) with in-memory, file, Redis and Loam adapters. The same key
table drives every host: the REPL Runner, the HTTP/WebSocket server and the
MCP server.

# Usage

	calc := abacus.New(abacus.WithHistory(memory.NewHistory()))
	ctx := context.Background()

	_ = calc.Type(ctx, "3+2 =")
	fmt.Println(calc.Display().Output) // 5

	_ = calc.Press(ctx, "=")
	fmt.Println(calc.Display().Output) // 7

For one-shot evaluation use Apply:

	res, err := abacus.Apply(ctx, "2(3+4)")
	if err != nil {
		var ce *domain.CalcError
		if errors.As(err, &ce) {
			fmt.Println(ce.Message())
		}
	}
	fmt.Println(res.Value) // 14
*/
package abacus
