package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

const (
	sessionExt = ".json"
	tempPrefix = "tmp-"
)

// ErrEmptySessionID is returned for operations without a session ID.
var ErrEmptySessionID = errors.New("session id cannot be empty")

// Store implements ports.StateStore as one JSON file per session.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath, defaulting to .abacus/sessions.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".abacus", "sessions")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.BasePath, sessionID+sessionExt)
}

// Save writes the state through a synced temp file in the same directory and
// renames it over the session file, so readers never see a partial write.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}

	tmp, err := os.CreateTemp(s.BasePath, tempPrefix+sessionID+"-*"+sessionExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	dest := s.path(sessionID)
	// Windows refuses to rename over an existing file.
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replace session %s: %w", sessionID, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("commit session %s: %w", sessionID, err)
	}
	return nil
}

// Load reads a session file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	data, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete removes a session file. Missing sessions are not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// List returns the IDs of all session files, skipping leftover temp files.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != sessionExt || strings.HasPrefix(name, tempPrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionExt))
	}
	return ids, nil
}
