// Package middleware wraps session stores. NewEncryptionMiddleware seals
// every saved state with AES-GCM, with fallback keys for rotation.
package middleware
