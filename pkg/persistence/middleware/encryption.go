package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrNotSealed is returned when a stored state carries no encrypted envelope.
var ErrNotSealed = errors.New("state is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	ActiveKey []byte

	// FallbackKeys are tried when the active key cannot decrypt a state,
	// so keys can be rotated without losing sessions.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals states with
// AES-GCM before they reach the wrapped store.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, fmt.Errorf("active key must be %d bytes, got %d", KeySize, len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d must be %d bytes, got %d", i, KeySize, len(k))
		}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plainText, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	// Only the session ID stays readable.
	envelope := &domain.State{
		SessionID: state.SessionID,
		Sealed:    base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if envelope.Sealed == "" {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotSealed)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(plainText, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DecodeKey parses a base64 (standard or URL alphabet) AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding} {
		if key, err := enc.DecodeString(s); err == nil && len(key) == KeySize {
			return key, nil
		}
	}
	return nil, fmt.Errorf("key must be %d bytes encoded as base64", KeySize)
}
