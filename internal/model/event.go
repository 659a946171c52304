package model

import (
	"encoding/json"

	"steward/internal/id"
)

// Event is a decoded assistant lifecycle event. Exactly one of the six
// variants below implements it.
type Event interface{ isEvent() }

// SessionStart begins or resumes a session.
type SessionStart struct {
	Source string // "startup", "resume", "clear", "compact"
}

// Stop fires when the assistant finishes a turn.
type Stop struct {
	Active bool // stop_hook_active
}

// PermissionRequest fires when the assistant waits for a tool approval.
type PermissionRequest struct {
	ToolName  string
	ToolInput json.RawMessage
}

// UserPromptSubmit fires when the user submits a prompt.
type UserPromptSubmit struct {
	Prompt string
}

// SessionEnd terminates a session.
type SessionEnd struct {
	Reason string
}

// Notification carries an out-of-band message of a given kind.
type Notification struct {
	Kind    NotificationKind
	Message string
}

func (SessionStart) isEvent()      {}
func (Stop) isEvent()              {}
func (PermissionRequest) isEvent() {}
func (UserPromptSubmit) isEvent()  {}
func (SessionEnd) isEvent()        {}
func (Notification) isEvent()      {}

// NotificationKind tags a notification. Kinds outside the known set are
// preserved verbatim so new upstream kinds pass through undamaged.
type NotificationKind string

const (
	KindElicitationDialog NotificationKind = "elicitation_dialog"
	KindPermissionPrompt  NotificationKind = "permission_prompt"
	KindIdlePrompt        NotificationKind = "idle_prompt"
	KindAuthSuccess       NotificationKind = "auth_success"
)

// HookInput groups the session context and event decoded from a hook's
// JSON input.
type HookInput struct {
	SessionID      id.Session
	CWD            string
	TranscriptPath string
	Event          Event
}

// hookPayload mirrors the raw JSON schema sent by assistant hooks.
type hookPayload struct {
	SessionID        string          `json:"session_id"`
	CWD              string          `json:"cwd"`
	HookEventName    string          `json:"hook_event_name"`
	TranscriptPath   string          `json:"transcript_path"`
	Source           *string         `json:"source"`
	StopHookActive   *bool           `json:"stop_hook_active"`
	ToolName         *string         `json:"tool_name"`
	ToolInput        json.RawMessage `json:"tool_input"`
	Prompt           *string         `json:"prompt"`
	Reason           *string         `json:"reason"`
	NotificationType *string         `json:"notification_type"`
	Message          *string         `json:"message"`
}

// DecodeEvent parses one hook event record. It returns ok=false for
// malformed JSON and for event names outside the known set; it never fails
// outward. Missing optional fields take their documented defaults.
func DecodeEvent(data []byte) (HookInput, bool) {
	var p hookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return HookInput{}, false
	}

	in := HookInput{
		SessionID:      id.Session(p.SessionID),
		CWD:            p.CWD,
		TranscriptPath: p.TranscriptPath,
	}

	switch p.HookEventName {
	case "SessionStart":
		in.Event = SessionStart{Source: strOr(p.Source, "startup")}
	case "Stop":
		in.Event = Stop{Active: boolOr(p.StopHookActive, false)}
	case "PermissionRequest":
		in.Event = PermissionRequest{
			ToolName:  strOr(p.ToolName, "unknown"),
			ToolInput: p.ToolInput,
		}
	case "UserPromptSubmit":
		in.Event = UserPromptSubmit{Prompt: strOr(p.Prompt, "")}
	case "SessionEnd":
		in.Event = SessionEnd{Reason: strOr(p.Reason, "other")}
	case "Notification":
		in.Event = Notification{
			Kind:    NotificationKind(strOr(p.NotificationType, "")),
			Message: strOr(p.Message, ""),
		}
	default:
		return HookInput{}, false
	}

	return in, true
}

func strOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
