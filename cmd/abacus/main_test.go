package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "abacus version "+abacus.Version+"\n", out)
}

func TestEvalCommand(t *testing.T) {
	t.Setenv("ABACUS_HISTORY", "memory")
	out, err := execute(t, "eval", "2**10", "9-10")
	require.NoError(t, err)
	assert.Equal(t, "1024\n-1\n", out)
}

func TestSessionCommand_FileStore(t *testing.T) {
	t.Setenv("ABACUS_STORE_DIR", filepath.Join(t.TempDir(), "sessions"))
	out, err := execute(t, "session", "ls", "--store", "file")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions.")
}

func TestInvalidBackendFlag(t *testing.T) {
	_, err := execute(t, "eval", "1", "--history", "floppy")
	assert.ErrorContains(t, err, "floppy")
}
