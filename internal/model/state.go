package model

import "fmt"

// AttentionReason says why a session needs the user.
type AttentionReason string

const (
	ReasonDone       AttentionReason = "done"
	ReasonPermission AttentionReason = "permission"
	ReasonQuestion   AttentionReason = "question"
)

// State is the per-pane attention state: either working, or waiting for the
// user with a reason.
type State struct {
	Attention bool
	Reason    AttentionReason // set only when Attention is true
}

// Working is the state of a session that is busy on the user's behalf.
var Working = State{}

// NeedsAttention returns the waiting state for the given reason.
func NeedsAttention(r AttentionReason) State {
	return State{Attention: true, Reason: r}
}

// Encode renders the state as its stored string form.
func (s State) Encode() string {
	if !s.Attention {
		return "working"
	}
	return "needs_attention:" + string(s.Reason)
}

// DecodeState parses a stored state string. Unknown encodings are an error,
// never silently mapped to a default.
func DecodeState(raw string) (State, error) {
	switch raw {
	case "working":
		return Working, nil
	case "needs_attention:done":
		return NeedsAttention(ReasonDone), nil
	case "needs_attention:permission":
		return NeedsAttention(ReasonPermission), nil
	case "needs_attention:question":
		return NeedsAttention(ReasonQuestion), nil
	}
	return State{}, fmt.Errorf("invalid state encoding %q", raw)
}

// Transition maps a lifecycle event to a state change. A nil next with
// remove=false means no change; remove=true means the pane record goes away.
// Pure and total over the event sum.
func Transition(e Event) (next *State, remove bool) {
	switch ev := e.(type) {
	case SessionStart, UserPromptSubmit:
		return statePtr(Working), false
	case Stop:
		return statePtr(NeedsAttention(ReasonDone)), false
	case PermissionRequest:
		return statePtr(NeedsAttention(ReasonPermission)), false
	case Notification:
		if ev.Kind == KindElicitationDialog {
			return statePtr(NeedsAttention(ReasonQuestion)), false
		}
		return nil, false
	case SessionEnd:
		return nil, true
	}
	return nil, false
}

func statePtr(s State) *State { return &s }
