// Package testutils holds fixtures shared by adapter tests.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	opts = append([]loam.Option{loam.WithVersioning(false), loam.WithForceTemp(false)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// StartRedis runs an in-process redis server and a client connected to it,
// both closed when the test ends.
func StartRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
