package domain

// StateDiff represents the changes between two states.
// It is serialized to JSON for partial updates on streaming clients.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Expression *string `json:"expression,omitempty"`
	Input      *string `json:"input,omitempty"`
	Output     *string `json:"output,omitempty"`
	Evaluated  *bool   `json:"evaluated,omitempty"`
	Scientific *bool   `json:"scientific,omitempty"`

	// Repeat is sent whole whenever any of its fields changed.
	Repeat *RepeatState `json:"repeat,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}
	if oldState == nil {
		return fullDiff(newState)
	}

	diff := &StateDiff{SessionID: newState.SessionID}
	changed := false

	if oldState.Expression != newState.Expression {
		diff.Expression = &newState.Expression
		changed = true
	}
	if oldState.Display.Input != newState.Display.Input {
		diff.Input = &newState.Display.Input
		changed = true
	}
	if oldState.Display.Output != newState.Display.Output {
		diff.Output = &newState.Display.Output
		changed = true
	}
	if oldState.Evaluated != newState.Evaluated {
		diff.Evaluated = &newState.Evaluated
		changed = true
	}
	if oldState.Scientific != newState.Scientific {
		diff.Scientific = &newState.Scientific
		changed = true
	}
	if !repeatEqual(oldState.Repeat, newState.Repeat) {
		r := newState.Snapshot().Repeat
		diff.Repeat = &r
		changed = true
	}

	if !changed {
		return nil
	}
	return diff
}

func fullDiff(s *State) *StateDiff {
	cp := s.Snapshot()
	return &StateDiff{
		SessionID:  cp.SessionID,
		Expression: &cp.Expression,
		Input:      &cp.Display.Input,
		Output:     &cp.Display.Output,
		Evaluated:  &cp.Evaluated,
		Scientific: &cp.Scientific,
		Repeat:     &cp.Repeat,
	}
}

func repeatEqual(a, b RepeatState) bool {
	if a.Operator != b.Operator || a.Operand != b.Operand {
		return false
	}
	if (a.Result == nil) != (b.Result == nil) {
		return false
	}
	return a.Result == nil || *a.Result == *b.Result
}
