package memory

import "sync"

// Display implements ports.Display by remembering the last text written.
// Safe for concurrent use.
type Display struct {
	mu   sync.RWMutex
	text string
}

// NewDisplay creates a blank display.
func NewDisplay() *Display {
	return &Display{}
}

func (d *Display) SetText(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

func (d *Display) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}
