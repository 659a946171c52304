package model

import (
	"encoding/json"
	"testing"
)

// --- Encode / DecodeState round-trip ---

func TestStateRoundTrip_WhenGivenEveryValidState_ShouldSurviveUnchanged(t *testing.T) {
	states := []State{
		Working,
		NeedsAttention(ReasonDone),
		NeedsAttention(ReasonPermission),
		NeedsAttention(ReasonQuestion),
	}
	for _, s := range states {
		got, err := DecodeState(s.Encode())
		if err != nil {
			t.Fatalf("decode %q: %v", s.Encode(), err)
		}
		if got != s {
			t.Errorf("round trip of %q: got %+v, want %+v", s.Encode(), got, s)
		}
	}
}

func TestStateEncode_ShouldProduceTheFourKnownEncodings(t *testing.T) {
	cases := map[string]State{
		"working":                    Working,
		"needs_attention:done":       NeedsAttention(ReasonDone),
		"needs_attention:permission": NeedsAttention(ReasonPermission),
		"needs_attention:question":   NeedsAttention(ReasonQuestion),
	}
	for want, s := range cases {
		if got := s.Encode(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestDecodeState_WhenGivenUnknownEncoding_ShouldFail(t *testing.T) {
	for _, raw := range []string{"", "idle", "needs_attention", "needs_attention:", "needs_attention:later", "WORKING"} {
		if _, err := DecodeState(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

// --- Transition ---

func TestTransition_WhenGivenSessionStartResume_ShouldReturnWorking(t *testing.T) {
	next, remove := Transition(SessionStart{Source: "resume"})
	if remove {
		t.Fatal("unexpected remove")
	}
	if next == nil || *next != Working {
		t.Errorf("expected Working, got %v", next)
	}
}

func TestTransition_WhenGivenUserPromptSubmit_ShouldReturnWorking(t *testing.T) {
	next, remove := Transition(UserPromptSubmit{Prompt: "do the thing"})
	if remove || next == nil || *next != Working {
		t.Errorf("expected Working, got %v remove=%v", next, remove)
	}
}

func TestTransition_WhenGivenStop_ShouldNeedAttentionDone(t *testing.T) {
	next, remove := Transition(Stop{Active: false})
	if remove || next == nil || *next != NeedsAttention(ReasonDone) {
		t.Errorf("expected NeedsAttention(done), got %v remove=%v", next, remove)
	}
}

func TestTransition_WhenGivenPermissionRequest_ShouldNeedAttentionPermission(t *testing.T) {
	next, _ := Transition(PermissionRequest{ToolName: "Bash", ToolInput: json.RawMessage(`{}`)})
	if next == nil || *next != NeedsAttention(ReasonPermission) {
		t.Errorf("expected NeedsAttention(permission), got %v", next)
	}
}

func TestTransition_WhenGivenElicitationDialog_ShouldNeedAttentionQuestion(t *testing.T) {
	next, _ := Transition(Notification{Kind: KindElicitationDialog, Message: "pick"})
	if next == nil || *next != NeedsAttention(ReasonQuestion) {
		t.Errorf("expected NeedsAttention(question), got %v", next)
	}
}

func TestTransition_WhenGivenOtherNotification_ShouldReturnNoChange(t *testing.T) {
	for _, kind := range []NotificationKind{KindIdlePrompt, KindPermissionPrompt, KindAuthSuccess, "something_new"} {
		next, remove := Transition(Notification{Kind: kind, Message: "x"})
		if next != nil || remove {
			t.Errorf("kind %q: expected no change, got %v remove=%v", kind, next, remove)
		}
	}
}

func TestTransition_WhenGivenSessionEnd_ShouldRemove(t *testing.T) {
	next, remove := Transition(SessionEnd{Reason: "logout"})
	if !remove {
		t.Fatal("expected remove")
	}
	if next != nil {
		t.Errorf("expected no next state, got %v", next)
	}
}
