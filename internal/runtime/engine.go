package runtime

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/abacus/internal/evaluator"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// Engine is the calculator's expression state machine. It owns the State and
// writes to the injected displays; it is not safe for concurrent use.
type Engine struct {
	state     *domain.State
	restore   bool
	evaluator ports.Evaluator
	input     ports.Display
	output    ports.Display
	history   ports.HistorySink
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	random    func() float64
	now       func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithEvaluator replaces the built-in arithmetic evaluator.
func WithEvaluator(ev ports.Evaluator) EngineOption {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// WithDisplays sets the input and output display sinks.
func WithDisplays(input, output ports.Display) EngineOption {
	return func(e *Engine) {
		e.input = input
		e.output = output
	}
}

// WithHistory sets the sink that receives computed results.
func WithHistory(h ports.HistorySink) EngineOption {
	return func(e *Engine) {
		e.history = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithState resumes from a previous snapshot. The displays are restored
// from the snapshot's Display texts.
func WithState(state *domain.State) EngineOption {
	return func(e *Engine) {
		if state != nil {
			e.state = state.Snapshot()
			e.restore = true
		}
	}
}

// WithRandom sets the source used by Rand. It must return values in [0, 1).
func WithRandom(fn func() float64) EngineOption {
	return func(e *Engine) {
		e.random = fn
	}
}

// WithClock sets the clock used to timestamp history entries.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		state:     domain.NewState(""),
		evaluator: evaluator.New(),
		input:     &buffer{},
		output:    &buffer{},
		logger:    logging.NewNop(),
		random:    rand.Float64,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.restore {
		e.input.SetText(e.state.Display.Input)
		e.output.SetText(e.state.Display.Output)
	}
	return e
}

// State returns a snapshot of the current state, including display texts.
func (e *Engine) State() *domain.State {
	s := e.state.Snapshot()
	s.Display = domain.Display{Input: e.input.Text(), Output: e.output.Text()}
	return s
}

// Expression returns the in-progress expression text.
func (e *Engine) Expression() string {
	return e.state.Expression
}

func (e *Engine) setInput(text string) {
	e.input.SetText(text)
	e.state.Display.Input = text
}

func (e *Engine) setOutput(text string) {
	e.output.SetText(text)
	e.state.Display.Output = text
}

// fail reports a calculator failure on the output display and returns it.
func (e *Engine) fail(ctx context.Context, op string, kind domain.ErrorKind, cause error) error {
	err := domain.NewCalcError(kind, op, cause)
	e.setOutput(err.Message())
	e.logger.Debug("operation failed", "op", op, "kind", kind, "error", cause)

	if e.hooks.OnFailure != nil {
		e.hooks.OnFailure(ctx, &domain.FailureEvent{
			EventBase: e.eventBase(domain.EventFailure),
			Op:        op,
			Kind:      kind,
		})
	}
	return err
}

func (e *Engine) emitResult(ctx context.Context, op, source, display string, result float64) {
	e.logger.Debug("result", "op", op, "source", source, "display", display, "result", result)
	if e.hooks.OnResult != nil {
		e.hooks.OnResult(ctx, &domain.ResultEvent{
			EventBase: e.eventBase(domain.EventResult),
			Op:        op,
			Source:    source,
			Display:   display,
			Result:    result,
		})
	}
}

func (e *Engine) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: e.state.SessionID}
}

// record appends to the history sink. Sink failures are logged, never surfaced.
func (e *Engine) record(ctx context.Context, op, text string, result float64) {
	if e.history == nil {
		return
	}
	entry := domain.HistoryEntry{Expression: text, Result: result, RecordedAt: e.now()}
	if err := e.history.Add(ctx, entry); err != nil {
		e.logger.Warn("history append failed", "op", op, "error", err)
	}
}

// evaluateExpression normalizes and evaluates the current expression,
// failing with kind when it does not parse. The value may be non-finite;
// callers decide how to report it.
func (e *Engine) evaluateExpression(ctx context.Context, op string, kind domain.ErrorKind) (float64, error) {
	v, err := e.evaluator.Evaluate(Normalize(e.state.Expression))
	if err != nil {
		return 0, e.fail(ctx, op, kind, err)
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func lastRune(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s[len(s)-1:]
	}
	return s[len(s)-size:]
}

func trimLastRune(s string) string {
	return strings.TrimSuffix(s, lastRune(s))
}

// buffer is the default Display: it only remembers the last text.
type buffer struct {
	text string
}

func (b *buffer) SetText(text string) { b.text = text }
func (b *buffer) Text() string        { return b.text }
