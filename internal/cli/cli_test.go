package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/internal/adapters/file"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/pkg/adapters/loam"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	redisadapter "github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/domain"
)

func fileConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store = "file"
	cfg.StoreDir = t.TempDir()
	return cfg
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	logger := createLogger(false)

	t.Run("memory", func(t *testing.T) {
		b, err := OpenBackends(ctx, config.Default(), logger)
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &memory.History{}, b.History)
		assert.IsType(t, &memory.Store{}, b.Store)
		assert.Nil(t, b.Locker)
	})

	t.Run("file and loam", func(t *testing.T) {
		cfg := fileConfig(t)
		cfg.History = "loam"
		cfg.HistoryDir = t.TempDir()

		b, err := OpenBackends(ctx, cfg, logger)
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &loam.History{}, b.History)
		assert.IsType(t, &file.Store{}, b.Store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.History = "redis"
		cfg.Store = "redis"
		cfg.Redis.Addr = mr.Addr()

		b, err := OpenBackends(ctx, cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &redisadapter.History{}, b.History)
		assert.IsType(t, &redisadapter.Store{}, b.Store)
		assert.NotNil(t, b.Locker)
		assert.NoError(t, b.Close())
	})

	t.Run("encrypted store", func(t *testing.T) {
		cfg := fileConfig(t)
		cfg.StoreKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

		b, err := OpenBackends(ctx, cfg, logger)
		require.NoError(t, err)
		require.NoError(t, b.Store.Save(ctx, "s", domain.NewState("s")))

		raw, err := file.New(cfg.StoreDir).Load(ctx, "s")
		require.NoError(t, err)
		assert.NotEmpty(t, raw.Sealed)

		loaded, err := b.Store.Load(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, "s", loaded.SessionID)
	})

	t.Run("bad store key", func(t *testing.T) {
		cfg := config.Default()
		cfg.StoreKey = "not-a-key"
		_, err := OpenBackends(ctx, cfg, logger)
		assert.ErrorContains(t, err, "store_key")
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := config.Default()
		cfg.History = "redis"
		cfg.Redis.Addr = addr
		_, err := OpenBackends(ctx, cfg, logger)
		assert.Error(t, err)
	})
}

func TestEval(t *testing.T) {
	var out bytes.Buffer
	err := Eval(context.Background(), config.Default(), []string{"2+3", "2(3+4)"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "5\n14\n", out.String())

	out.Reset()
	err = Eval(context.Background(), config.Default(), []string{"1/0", "1+1"}, &out)
	assert.ErrorContains(t, err, "1 of 2")
	assert.Equal(t, "Cannot divide by zero.\n2\n", out.String())
}

func TestRun_Headless(t *testing.T) {
	var out bytes.Buffer
	err := Run(RunOptions{
		Config:   config.Default(),
		Headless: true,
		Input:    strings.NewReader("2+3=\n9 sqrt\nexit\n"),
		Output:   &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "5\n3\n", out.String())
}

func TestRun_ResumesSession(t *testing.T) {
	cfg := fileConfig(t)

	var out bytes.Buffer
	require.NoError(t, Run(RunOptions{
		Config:    cfg,
		SessionID: "desk",
		Headless:  true,
		Input:     strings.NewReader("2+3=\n"),
		Output:    &out,
	}))

	state, err := file.New(cfg.StoreDir).Load(context.Background(), "desk")
	require.NoError(t, err)
	assert.Equal(t, "5", state.Display.Output)

	out.Reset()
	require.NoError(t, Run(RunOptions{
		Config:    cfg,
		SessionID: "desk",
		Headless:  true,
		Input:     strings.NewReader("*2=\n"),
		Output:    &out,
	}))
	assert.Equal(t, "10\n", out.String())
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)
	store := file.New(cfg.StoreDir)
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a")))

	var out bytes.Buffer
	require.NoError(t, ListSessions(ctx, cfg, &out))
	assert.Equal(t, "a\n", out.String())

	out.Reset()
	require.NoError(t, InspectSession(ctx, cfg, "a", &out))
	assert.Contains(t, out.String(), `"session_id": "a"`)

	out.Reset()
	require.NoError(t, DeleteSession(ctx, cfg, "a", &out))
	assert.Contains(t, out.String(), "deleted")

	out.Reset()
	require.NoError(t, ListSessions(ctx, cfg, &out))
	assert.Equal(t, "No sessions.\n", out.String())

	assert.ErrorIs(t, InspectSession(ctx, cfg, "a", &out), domain.ErrSessionNotFound)
}

func TestHistoryCommands(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.History = "loam"
	cfg.HistoryDir = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, Eval(ctx, cfg, []string{"6*7"}, &out))

	out.Reset()
	require.NoError(t, ShowHistory(ctx, cfg, 10, nil, &out))
	assert.Contains(t, out.String(), "`6*7` = **42**")

	out.Reset()
	require.NoError(t, ClearHistory(ctx, cfg, &out))
	out.Reset()
	require.NoError(t, ShowHistory(ctx, cfg, 10, nil, &out))
	assert.Equal(t, "_No history yet._\n", out.String())
}

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("abc"), cancel)

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	close(cancel)
	_, err = r.Read(buf)
	assert.True(t, isInterrupted(err))
	assert.NoError(t, handleExecutionError(err))
}
