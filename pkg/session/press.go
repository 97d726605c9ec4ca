package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/domain"
)

// KeyFailure records a calculator failure raised by one key of a batch.
type KeyFailure struct {
	Key     string           `json:"key"`
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// PressResult is the outcome of a Press batch.
type PressResult struct {
	State    *domain.State     `json:"state"`
	Diff     *domain.StateDiff `json:"diff,omitempty"`
	Failures []KeyFailure      `json:"failures,omitempty"`
}

// ErrUnknownKey wraps runtime.ErrUnknownKey for callers outside the module.
var ErrUnknownKey = runtime.ErrUnknownKey

// Press loads the session, applies keys in order and saves the result.
// Calculator failures do not stop the batch; they are reported in Failures.
// Unknown keys reject the whole batch before anything is applied.
func (m *Manager) Press(ctx context.Context, sessionID string, keys ...string) (*PressResult, error) {
	for _, k := range keys {
		if !runtime.IsKnownKey(k) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
	}

	var result *PressResult
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		before, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		opts := append([]runtime.EngineOption{}, m.engineOpts...)
		opts = append(opts, runtime.WithState(before))
		engine := runtime.NewEngine(opts...)

		res := &PressResult{}
		for _, k := range keys {
			err := engine.Press(ctx, k)
			if err == nil {
				continue
			}
			var ce *domain.CalcError
			if !errors.As(err, &ce) {
				return err
			}
			res.Failures = append(res.Failures, KeyFailure{Key: k, Kind: ce.Kind, Message: ce.Message()})
		}

		after := engine.State()
		if err := m.store.Save(ctx, sessionID, after); err != nil {
			return fmt.Errorf("save session %s: %w", sessionID, err)
		}
		res.State = after
		res.Diff = domain.Diff(before, after)
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("keys applied", "session_id", sessionID, "keys", len(keys), "failures", len(result.Failures))
	return result, nil
}
