package abacus

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// ErrUnknownKey is returned when a key maps to no calculator operation.
var ErrUnknownKey = runtime.ErrUnknownKey

// Calculator is the high-level entry point of the library. It owns one
// expression engine and the two displays it writes to. A Calculator is not
// safe for concurrent use; hosts serving many users keep one per session.
type Calculator struct {
	engine *runtime.Engine
	input  ports.Display
	output ports.Display

	history   ports.HistorySink
	evaluator ports.Evaluator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	state     *domain.State
	random    func() float64
}

// Option defines a functional option for configuring the Calculator.
type Option func(*Calculator)

// WithHistory sets the sink that receives computed results.
func WithHistory(h ports.HistorySink) Option {
	return func(c *Calculator) {
		c.history = h
	}
}

// WithEvaluator replaces the built-in arithmetic evaluator.
func WithEvaluator(ev ports.Evaluator) Option {
	return func(c *Calculator) {
		c.evaluator = ev
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Calculator) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithDisplays routes the input and output lines to custom sinks.
func WithDisplays(input, output ports.Display) Option {
	return func(c *Calculator) {
		c.input = input
		c.output = output
	}
}

// WithState resumes a saved session.
func WithState(state *domain.State) Option {
	return func(c *Calculator) {
		c.state = state
	}
}

// WithRandom sets the source used by the rand key.
func WithRandom(fn func() float64) Option {
	return func(c *Calculator) {
		c.random = fn
	}
}

// New creates a Calculator with in-memory displays unless others are given.
func New(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.input == nil || c.output == nil {
		c.input, c.output = memory.NewDisplay(), memory.NewDisplay()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithDisplays(c.input, c.output),
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
	}
	if c.history != nil {
		engineOpts = append(engineOpts, runtime.WithHistory(c.history))
	}
	if c.evaluator != nil {
		engineOpts = append(engineOpts, runtime.WithEvaluator(c.evaluator))
	}
	if c.state != nil {
		engineOpts = append(engineOpts, runtime.WithState(c.state))
	}
	if c.random != nil {
		engineOpts = append(engineOpts, runtime.WithRandom(c.random))
	}
	c.engine = runtime.NewEngine(engineOpts...)
	return c
}

// Press applies a single key: a keypad character or a named key such as
// "sqrt" or "=". Calculator failures are returned as *domain.CalcError and
// also shown on the output line.
func (c *Calculator) Press(ctx context.Context, key string) error {
	return c.engine.Press(ctx, key)
}

// Type presses every key of text. Words are separated by whitespace; a word
// is either a named key or a run of keypad characters. An unknown key stops
// typing; calculator failures do not, and are returned joined.
func (c *Calculator) Type(ctx context.Context, text string) error {
	var failures []error
	for _, word := range strings.Fields(text) {
		for _, key := range runtime.SplitKeys(word) {
			err := c.engine.Press(ctx, key)
			if err == nil {
				continue
			}
			if domain.KindOf(err) == "" {
				return err
			}
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// Paste replaces the expression with text without applying keypad rules.
func (c *Calculator) Paste(ctx context.Context, text string) error {
	return c.engine.Paste(ctx, text)
}

// Evaluate computes the current expression (or repeats the last operation).
func (c *Calculator) Evaluate(ctx context.Context) error {
	return c.engine.Evaluate(ctx)
}

// Clear resets the calculator.
func (c *Calculator) Clear(ctx context.Context) error {
	return c.engine.Clear(ctx)
}

// Display returns what the two display lines show.
func (c *Calculator) Display() domain.Display {
	return domain.Display{Input: c.input.Text(), Output: c.output.Text()}
}

// State returns a snapshot suitable for persistence and WithState.
func (c *Calculator) State() *domain.State {
	return c.engine.State()
}

// Result is the outcome of Apply.
type Result struct {
	Expression string         `json:"expression"`
	Value      float64        `json:"value"`
	Display    domain.Display `json:"display"`
}

// Apply evaluates a complete expression on a fresh calculator. Glyphs and
// implicit multiplication are accepted as on the keypad.
func Apply(ctx context.Context, expression string, opts ...Option) (Result, error) {
	c := New(opts...)
	res := Result{Expression: expression}

	_ = c.Paste(ctx, expression)
	err := c.Evaluate(ctx)
	res.Display = c.Display()
	if err != nil {
		return res, err
	}
	res.Value, _ = c.State().LastResult()
	return res, nil
}
