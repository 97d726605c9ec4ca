package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/abacus/internal/logging"
)

// streamBuffer is how many undelivered messages a slow subscriber may queue.
const streamBuffer = 16

// StreamManager fans state diffs out to the subscribers of each session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for sessionID. The returned func
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			subs := sm.subscribers[sessionID]
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		})
	}
}

// Broadcast delivers msg to every subscriber of sessionID, dropping it for
// subscribers whose buffer is full.
func (sm *StreamManager) Broadcast(sessionID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("stream subscriber too slow, dropping message", "session_id", sessionID)
		}
	}
}

// Subscribers reports how many streams are open for sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}
