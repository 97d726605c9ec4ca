package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventResult  EventType = "result"
	EventFailure EventType = "failure"
)

// Result sources.
const (
	SourceEvaluate   = "evaluate"
	SourceRepeat     = "repeat"
	SourceScientific = "scientific"
	SourceEdit       = "edit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// ResultEvent is emitted when an operation displays a numeric result.
type ResultEvent struct {
	EventBase
	Op      string  `json:"op"`
	Source  string  `json:"source"`
	Display string  `json:"display"`
	Result  float64 `json:"result"`
}

// FailureEvent is emitted when an operation reports a calculator failure.
type FailureEvent struct {
	EventBase
	Op   string    `json:"op"`
	Kind ErrorKind `json:"kind"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnResult  func(context.Context, *ResultEvent)
	OnFailure func(context.Context, *FailureEvent)
}
