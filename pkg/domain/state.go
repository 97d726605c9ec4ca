package domain

// RepeatState holds the last binary operation so that pressing equals again
// re-applies it to the running result.
type RepeatState struct {
	Operator string   `json:"operator,omitempty"`
	Operand  string   `json:"operand,omitempty"`
	Result   *float64 `json:"result,omitempty"`
}

// Display captures the text of the two display sinks.
type Display struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// State represents the current snapshot of a calculator session.
type State struct {
	// SessionID identifies the session when the state is persisted by a host.
	SessionID string `json:"session_id,omitempty"`

	// Expression is the in-progress arithmetic text.
	Expression string `json:"expression"`

	Repeat RepeatState `json:"repeat"`

	// Evaluated is true immediately after a result has been displayed.
	Evaluated bool `json:"evaluated"`

	// Scientific marks that the latest result came from a scientific function.
	Scientific bool `json:"scientific"`

	Display Display `json:"display"`

	// Sealed carries the encrypted form of a state stored by an encrypting
	// store. All other fields are empty in a sealed envelope.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates a clean state for the given session.
func NewState(sessionID string) *State {
	return &State{SessionID: sessionID}
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Repeat.Result != nil {
		v := *s.Repeat.Result
		cp.Repeat.Result = &v
	}
	return &cp
}

// LastResult returns the last computed result, if any.
func (s *State) LastResult() (float64, bool) {
	if s.Repeat.Result == nil {
		return 0, false
	}
	return *s.Repeat.Result, true
}

// SetLastResult stores v as the last computed result.
func (s *State) SetLastResult(v float64) {
	s.Repeat.Result = &v
}

// ResetRepeat clears the repeat-evaluate fields.
func (s *State) ResetRepeat() {
	s.Repeat = RepeatState{}
}
