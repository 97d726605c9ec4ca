package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Expression = "3+2"
		state.Display.Output = "3+2"
		state.Repeat.Operator = "+"
		state.Repeat.Operand = "2"
		state.SetLastResult(5)
		state.Evaluated = true

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "3+2", loaded.Expression)
		assert.Equal(t, "3+2", loaded.Display.Output)
		assert.Equal(t, "+", loaded.Repeat.Operator)
		assert.True(t, loaded.Evaluated)
		result, ok := loaded.LastResult()
		assert.True(t, ok)
		assert.Equal(t, 5.0, result)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Expression = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "3+2", again.Expression)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunHistoryStoreContract verifies that a HistoryStore keeps entries in
// insertion order, honors limits and can be cleared. The store must be empty
// when the suite starts.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		entries, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Add and List", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			err := store.Add(ctx, domain.HistoryEntry{
				Expression: fmt.Sprintf("%d+%d", i, i),
				Result:     float64(2 * i),
				RecordedAt: base.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
		}

		entries, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "1+1", entries[0].Expression)
		assert.Equal(t, 2.0, entries[0].Result)
		assert.Equal(t, "3+3", entries[2].Expression)
		assert.Equal(t, 6.0, entries[2].Result)
		assert.True(t, entries[2].RecordedAt.Equal(base.Add(3*time.Second)), "timestamp preserved, got %v", entries[2].RecordedAt)
	})

	t.Run("Limit Keeps Most Recent", func(t *testing.T) {
		entries, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "2+2", entries[0].Expression)
		assert.Equal(t, "3+3", entries[1].Expression)
	})

	t.Run("No Dedup", func(t *testing.T) {
		entry := domain.HistoryEntry{Expression: "√(9)", Result: 3, RecordedAt: base.Add(time.Minute)}
		require.NoError(t, store.Add(ctx, entry))
		require.NoError(t, store.Add(ctx, entry))

		entries, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 5)
		assert.Equal(t, "√(9)", entries[4].Expression)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		entries, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
