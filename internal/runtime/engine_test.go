package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/domain"
)

type screen struct {
	text string
}

func (s *screen) SetText(text string) { s.text = text }
func (s *screen) Text() string        { return s.text }

type recorder struct {
	entries []domain.HistoryEntry
	err     error
}

func (r *recorder) Add(_ context.Context, entry domain.HistoryEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

type fixture struct {
	engine  *runtime.Engine
	input   *screen
	output  *screen
	history *recorder
}

func newFixture(opts ...runtime.EngineOption) *fixture {
	f := &fixture{input: &screen{}, output: &screen{}, history: &recorder{}}
	base := []runtime.EngineOption{
		runtime.WithDisplays(f.input, f.output),
		runtime.WithHistory(f.history),
	}
	f.engine = runtime.NewEngine(append(base, opts...)...)
	return f
}

// press feeds keys and fails the test on any error.
func (f *fixture) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, f.engine.Press(context.Background(), k), "key %q", k)
	}
}

func TestEngine_EvaluateAndRepeat(t *testing.T) {
	f := newFixture()
	f.press(t, "3", "+", "2", "=")

	assert.Equal(t, "5", f.output.text)
	assert.Equal(t, "3+2", f.input.text)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, "3+2", f.history.entries[0].Expression)
	assert.Equal(t, 5.0, f.history.entries[0].Result)

	f.press(t, "=")
	assert.Equal(t, "7", f.output.text)
	f.press(t, "=")
	assert.Equal(t, "9", f.output.text)

	assert.Len(t, f.history.entries, 1, "repeat-evaluate is not recorded")

	st := f.engine.State()
	assert.True(t, st.Evaluated)
	assert.Empty(t, st.Expression)
	last, ok := st.LastResult()
	require.True(t, ok)
	assert.Equal(t, 9.0, last)
	assert.Equal(t, "+", st.Repeat.Operator)
	assert.Equal(t, "2", st.Repeat.Operand)
}

func TestEngine_ImplicitMultiplication(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{"bracket bracket", []string{"(", "2", ")", "(", "3", ")"}},
		{"digit bracket", []string{"2", "(", "3", ")"}},
		{"bracket digit", []string{"(", "3", ")", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.press(t, tt.keys...)
			f.press(t, "=")
			assert.Equal(t, "6", f.output.text)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"2(3)":   "2*(3)",
		"(1)(2)": "(1)*(2)",
		"(3)2":   "(3)*2",
		"6÷2×3":  "6/2*3",
		"4x5−1":  "4*5-1",
		"1+2":    "1+2",
	}
	for in, want := range tests {
		assert.Equal(t, want, runtime.Normalize(in), in)
	}
}

func TestEngine_Brackets(t *testing.T) {
	ctx := context.Background()

	t.Run("closing without opening", func(t *testing.T) {
		f := newFixture()
		err := f.engine.Press(ctx, ")")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNoOpeningBracket)
		assert.Equal(t, "Error: No opening bracket", f.output.text)
		assert.Empty(t, f.engine.Expression())
	})

	t.Run("extra closing bracket is ignored", func(t *testing.T) {
		f := newFixture()
		f.press(t, "(", "2", ")", ")")
		assert.Equal(t, "(2)", f.engine.Expression())
	})

	t.Run("unmatched on evaluate", func(t *testing.T) {
		f := newFixture()
		f.press(t, "(", "2", "+", "3")
		err := f.engine.Evaluate(ctx)
		assert.ErrorIs(t, err, domain.ErrUnmatchedBrackets)
		assert.Equal(t, domain.KindUnmatchedBrackets, domain.KindOf(err))
		assert.Equal(t, "Error: Unmatched brackets", f.output.text)
		assert.Equal(t, "(2+3", f.engine.Expression())
		assert.Empty(t, f.history.entries)
	})
}

func TestEngine_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("divide by zero", func(t *testing.T) {
		f := newFixture()
		f.press(t, "5", "/", "0")
		err := f.engine.Evaluate(ctx)
		assert.ErrorIs(t, err, domain.ErrDivideByZero)
		assert.Equal(t, "Cannot divide by zero.", f.output.text)
		assert.Equal(t, "5/0", f.engine.Expression())
	})

	t.Run("malformed expression", func(t *testing.T) {
		f := newFixture()
		f.press(t, "5", "+")
		err := f.engine.Evaluate(ctx)
		assert.ErrorIs(t, err, domain.ErrGeneric)
		assert.Equal(t, "Error", f.output.text)
	})

	t.Run("empty expression", func(t *testing.T) {
		f := newFixture()
		err := f.engine.Evaluate(ctx)
		assert.ErrorIs(t, err, domain.ErrDivideByZero)
		assert.Equal(t, "Cannot divide by zero.", f.output.text)
		assert.Empty(t, f.history.entries)
	})

	t.Run("history failure is not surfaced", func(t *testing.T) {
		f := newFixture()
		f.history.err = errors.New("disk full")
		f.press(t, "1", "+", "1", "=")
		assert.Equal(t, "2", f.output.text)
	})
}

func TestEngine_AppendRules(t *testing.T) {
	t.Run("leading operator is rejected except minus", func(t *testing.T) {
		f := newFixture()
		f.press(t, "+", "×", "/")
		assert.Empty(t, f.engine.Expression())
		f.press(t, "-", "4")
		assert.Equal(t, "-4", f.engine.Expression())
	})

	t.Run("operator substitution", func(t *testing.T) {
		f := newFixture()
		f.press(t, "5", "+", "×")
		assert.Equal(t, "5×", f.engine.Expression())
		assert.Equal(t, "5×", f.output.text)
	})

	t.Run("one decimal point per operand", func(t *testing.T) {
		f := newFixture()
		f.press(t, "1", ".", ".", "5", "+", "2", ".", "5", ".")
		assert.Equal(t, "1.5+2.5", f.engine.Expression())
	})

	t.Run("digit after result starts fresh", func(t *testing.T) {
		f := newFixture()
		f.press(t, "2", "+", "2", "=", "3")
		assert.Equal(t, "3", f.engine.Expression())
		assert.Equal(t, "3", f.output.text)
		assert.False(t, f.engine.State().Evaluated)
	})

	t.Run("operator after result chains", func(t *testing.T) {
		f := newFixture()
		f.press(t, "2", "+", "2", "=", "+", "1", "=")
		assert.Equal(t, "5", f.output.text)
		assert.Equal(t, "4+1", f.input.text)
		assert.Len(t, f.history.entries, 2)
	})
}

func TestEngine_ScientificFunctions(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		fn       string
		output   string
		notation string
	}{
		{"sqrt", []string{"4"}, "sqrt", "2", "√(4)"},
		{"square", []string{"3"}, "sqr", "9", "(3)²"},
		{"inverse", []string{"4"}, "inv", "0.25", "1/(4)"},
		{"log", []string{"1"}, "log", "0", "log(1)"},
		{"ln", []string{"1"}, "ln", "0", "ln(1)"},
		{"factorial", []string{"5"}, "fact", "120", "5!"},
		{"ten power", []string{"3"}, "tenpow", "1000", "10^(3)"},
		{"two power", []string{"1", "0"}, "twopow", "1024", "2^(10)"},
		{"exp", []string{"0"}, "exp", "1", "exp(0)"},
		{"abs", []string{"-", "7"}, "abs", "7", "|-7|"},
		{"floor", []string{"2", ".", "7"}, "floor", "2", "floor(2.7)"},
		{"ceil", []string{"2", ".", "2"}, "ceil", "3", "ceil(2.2)"},
		{"cos", []string{"0"}, "cos", "1", "cos(0)"},
		{"evaluates expression first", []string{"2", "+", "2"}, "sqrt", "2", "√(4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.press(t, tt.keys...)
			f.press(t, tt.fn)

			assert.Equal(t, tt.output, f.output.text)
			assert.Equal(t, tt.notation, f.input.text)
			require.Len(t, f.history.entries, 1)
			assert.Equal(t, tt.notation, f.history.entries[0].Expression)

			st := f.engine.State()
			assert.True(t, st.Evaluated)
			assert.True(t, st.Scientific)
			assert.Equal(t, tt.output, st.Expression)
		})
	}
}

func TestEngine_Trigonometry(t *testing.T) {
	tests := []struct {
		fn   string
		deg  []string
		want float64
	}{
		{"sin", []string{"3", "0"}, 0.5},
		{"cos", []string{"6", "0"}, 0.5},
		{"tan", []string{"4", "5"}, 1},
		{"sec", []string{"6", "0"}, 2},
		{"csc", []string{"3", "0"}, 2},
		{"cot", []string{"4", "5"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			f := newFixture()
			f.press(t, tt.deg...)
			f.press(t, tt.fn)
			last, ok := f.engine.State().LastResult()
			require.True(t, ok)
			assert.InDelta(t, tt.want, last, 1e-9)
		})
	}
}

func TestEngine_ScientificFailures(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		fn   string
		want error
	}{
		{"sqrt of negative", []string{"-", "4"}, "sqrt", domain.ErrMathDomain},
		{"log of zero", []string{"0"}, "log", domain.ErrMathDomain},
		{"ln of negative", []string{"-", "1"}, "ln", domain.ErrMathDomain},
		{"factorial of fraction", []string{"2", ".", "5"}, "fact", domain.ErrMathDomain},
		{"factorial overflow", []string{"1", "7", "1"}, "fact", domain.ErrMathDomain},
		{"inverse of zero", []string{"0"}, "inv", domain.ErrDivideByZero},
		{"csc of zero", []string{"0"}, "csc", domain.ErrDivideByZero},
		{"cot of zero", []string{"0"}, "cot", domain.ErrDivideByZero},
		{"malformed", []string{"2", "+"}, "sin", domain.ErrGeneric},
		{"malformed sqrt", []string{"5", "+"}, "sqrt", domain.ErrMathDomain},
		{"malformed log", []string{"5", "+"}, "log", domain.ErrMathDomain},
		{"malformed ln", []string{"5", "+"}, "ln", domain.ErrMathDomain},
		{"malformed factorial", []string{"5", "+"}, "fact", domain.ErrMathDomain},
		{"overflow", []string{"4", "0", "0"}, "tenpow", domain.ErrMathDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.press(t, tt.keys...)
			before := f.engine.Expression()

			err := f.engine.Press(context.Background(), tt.fn)
			assert.ErrorIs(t, err, tt.want)
			var ce *domain.CalcError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, ce.Message(), f.output.text)
			assert.Equal(t, before, f.engine.Expression())
			assert.Empty(t, f.history.entries)
		})
	}
}

func TestEngine_EvaluateAfterScientific(t *testing.T) {
	f := newFixture()
	f.press(t, "9", "sqrt", "=")

	assert.Equal(t, "3", f.output.text)
	assert.Len(t, f.history.entries, 1, "evaluate after a scientific result is not recorded again")
	st := f.engine.State()
	assert.False(t, st.Scientific)
	assert.True(t, st.Evaluated)
}

func TestEngine_Rand(t *testing.T) {
	f := newFixture(runtime.WithRandom(func() float64 { return 0.25 }))
	f.press(t, "7", "rand")

	assert.Equal(t, "0.25", f.output.text)
	assert.Equal(t, "rand()", f.input.text)
	assert.Equal(t, "0.25", f.engine.Expression())
}

func TestEngine_Editing(t *testing.T) {
	t.Run("clear entry keeps repeat state", func(t *testing.T) {
		f := newFixture()
		f.press(t, "5", "+", "2", "=")
		assert.Equal(t, "7", f.output.text)

		f.press(t, "ce")
		assert.Empty(t, f.output.text)
		assert.Empty(t, f.engine.Expression())

		f.press(t, "=")
		assert.Equal(t, "9", f.output.text)
	})

	t.Run("clear resets everything", func(t *testing.T) {
		f := newFixture()
		f.press(t, "5", "+", "2", "=", "c")

		st := f.engine.State()
		assert.Empty(t, st.Expression)
		assert.False(t, st.Evaluated)
		assert.False(t, st.Scientific)
		assert.Equal(t, domain.RepeatState{}, st.Repeat)
		assert.Empty(t, f.input.text)
		assert.Empty(t, f.output.text)
	})

	t.Run("backspace removes one glyph", func(t *testing.T) {
		f := newFixture()
		f.press(t, "1", "2", "÷", "bs")
		assert.Equal(t, "12", f.engine.Expression())
		f.press(t, "backspace", "bs", "bs")
		assert.Empty(t, f.engine.Expression())
	})

	t.Run("toggle sign on empty is a no-op", func(t *testing.T) {
		f := newFixture()
		f.press(t, "neg")
		assert.Empty(t, f.engine.Expression())
		assert.Empty(t, f.output.text)
	})

	t.Run("toggle sign", func(t *testing.T) {
		f := newFixture()
		f.press(t, "5", "neg")
		assert.Equal(t, "-5", f.engine.Expression())
		f.press(t, "±")
		assert.Equal(t, "5", f.engine.Expression())
	})

	t.Run("mod", func(t *testing.T) {
		f := newFixture()
		f.press(t, "mod")
		assert.Empty(t, f.engine.Expression())
		f.press(t, "7", "mod", "3", "=")
		assert.Equal(t, "1", f.output.text)
	})

	t.Run("power", func(t *testing.T) {
		f := newFixture()
		f.press(t, "2", "pow", "^")
		assert.Equal(t, "2**", f.engine.Expression())
		f.press(t, "3", "=")
		assert.Equal(t, "8", f.output.text)
	})
}

func TestEngine_Angles(t *testing.T) {
	t.Run("degrees minutes seconds", func(t *testing.T) {
		f := newFixture()
		f.press(t, "1", "0", ".", "5", "dms")
		assert.Equal(t, `10° 30' 0"`, f.output.text)
		assert.Equal(t, "10.5°", f.input.text)
		assert.Empty(t, f.history.entries)
	})

	t.Run("dms on empty expression", func(t *testing.T) {
		f := newFixture()
		f.press(t, "dms")
		assert.Empty(t, f.output.text)
	})

	t.Run("degrees from parts", func(t *testing.T) {
		f := newFixture()
		f.press(t, "1", "0", "space", "3", "0", "space", "0", "deg")
		assert.Equal(t, "10.5", f.output.text)
		assert.Equal(t, "10.5", f.engine.Expression())
	})

	t.Run("missing parts count as zero", func(t *testing.T) {
		f := newFixture()
		f.press(t, "4", "5", "deg")
		assert.Equal(t, "45", f.output.text)
	})

	t.Run("abs without history", func(t *testing.T) {
		f := newFixture()
		f.press(t, "-", "5", "modx")
		assert.Equal(t, "5", f.output.text)
		assert.Equal(t, "|-5|", f.input.text)
		assert.Empty(t, f.history.entries)
		assert.False(t, f.engine.State().Scientific)
	})
}

func TestEngine_Hooks(t *testing.T) {
	var results []*domain.ResultEvent
	var failures []*domain.FailureEvent
	hooks := domain.LifecycleHooks{
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			results = append(results, e)
		},
		OnFailure: func(_ context.Context, e *domain.FailureEvent) {
			failures = append(failures, e)
		},
	}
	f := newFixture(
		runtime.WithLifecycleHooks(hooks),
		runtime.WithState(domain.NewState("s1")),
	)
	f.press(t, "1", "+", "1", "=", "=", "c", "9", "sqrt")
	_ = f.engine.Press(context.Background(), ")")

	require.Len(t, results, 3)
	assert.Equal(t, domain.SourceEvaluate, results[0].Source)
	assert.Equal(t, domain.SourceRepeat, results[1].Source)
	assert.Equal(t, domain.SourceScientific, results[2].Source)
	assert.Equal(t, "s1", results[0].SessionID)

	require.Len(t, failures, 1)
	assert.Equal(t, domain.KindNoOpeningBracket, failures[0].Kind)
	assert.Equal(t, domain.EventFailure, failures[0].Type)
}

func TestEngine_WithState(t *testing.T) {
	f := newFixture()
	f.press(t, "5", "+", "2", "=")
	saved := f.engine.State()

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g := newFixture(runtime.WithState(saved), runtime.WithClock(func() time.Time { return clock }))
	assert.Equal(t, "7", g.output.text)
	assert.Equal(t, "5+2", g.input.text)

	g.press(t, "=")
	assert.Equal(t, "9", g.output.text)

	g.press(t, "c", "1", "=")
	require.Len(t, g.history.entries, 1)
	assert.Equal(t, clock, g.history.entries[0].RecordedAt)

	// The snapshot is not shared with the new engine.
	last, _ := saved.LastResult()
	assert.Equal(t, 7.0, last)
}

func TestEngine_Press(t *testing.T) {
	f := newFixture()
	err := f.engine.Press(context.Background(), "bogus")
	assert.ErrorIs(t, err, runtime.ErrUnknownKey)
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(err))

	f.press(t, "1", "ENTER")
	assert.Equal(t, "1", f.output.text)

	assert.Contains(t, runtime.KeyNames(), "sqrt")
	assert.True(t, runtime.IsAppendKey("7"))
	assert.True(t, runtime.IsAppendKey("÷"))
	assert.False(t, runtime.IsAppendKey("sin"))
	assert.True(t, runtime.IsKnownKey("SIN"))
	assert.False(t, runtime.IsKnownKey("bogus"))
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"sqrt"}, runtime.SplitKeys("sqrt"))
	assert.Equal(t, []string{"Enter"}, runtime.SplitKeys("Enter"))
	assert.Equal(t, []string{"2", "**", "3", "%", "4"}, runtime.SplitKeys("2**3%4"))
	assert.Equal(t, []string{"1", "÷", "2"}, runtime.SplitKeys("1÷2"))
	assert.Equal(t, []string{"="}, runtime.SplitKeys("="))
}

func TestEngine_Paste(t *testing.T) {
	f := newFixture()
	f.press(t, "9", "=")
	require.NoError(t, f.engine.Paste(context.Background(), "2*-3"))
	assert.Equal(t, "2*-3", f.output.text)
	assert.False(t, f.engine.State().Evaluated)

	require.NoError(t, f.engine.Evaluate(context.Background()))
	assert.Equal(t, "-6", f.output.text)
	assert.Equal(t, "2*-3", f.input.text)
}
