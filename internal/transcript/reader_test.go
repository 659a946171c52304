package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTranscript writes the given lines into a transcript fixture.
func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create transcript: %v", err)
	}
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write line: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestRead_WhenGivenUserAndAssistantRecords_ShouldExtractCanonicalFields(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-06-01T12:00:00Z","cwd":"/home/u/proj","message":{"role":"user","content":"hello"}}`,
		`{"type":"assistant","uuid":"a1","parentUuid":"u1","sessionId":"s1","timestamp":"2025-06-01T12:00:05Z","cwd":"/home/u/proj","message":{"role":"assistant","content":[{"type":"text","text":"hi there"}]}}`,
	)

	msgs, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	u := msgs[0]
	if u.Role != "user" || u.UUID != "u1" || u.SessionID != "s1" || u.Content != "hello" {
		t.Errorf("unexpected user message: %+v", u)
	}
	if u.CWD != "/home/u/proj" {
		t.Errorf("expected cwd extracted, got %q", u.CWD)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !u.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, u.Timestamp)
	}

	a := msgs[1]
	if a.Role != "assistant" || a.ParentUUID != "u1" || a.Content != "hi there" {
		t.Errorf("unexpected assistant message: %+v", a)
	}
}

func TestRead_WhenAssistantContentHasMixedItems_ShouldKeepOnlyTextJoinedByNewline(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"assistant","uuid":"a1","message":{"content":[{"type":"text","text":"first"},{"type":"tool_use","id":"tu1"},{"type":"text","text":"second"}]}}`,
	)

	msgs, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Content != "first\nsecond" {
		t.Errorf("expected joined text, got %q", msgs[0].Content)
	}
}

func TestRead_WhenAssistantContentIsPlainString_ShouldUseItDirectly(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"assistant","uuid":"a1","message":{"content":"plain reply"}}`,
	)

	msgs, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "plain reply" {
		t.Fatalf("expected plain reply, got %+v", msgs)
	}
}

func TestRead_WhenGivenNonMessageRecords_ShouldSkipThem(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"progress","uuid":"p1"}`,
		`{"type":"file-history-snapshot","snapshot":{}}`,
		`{"type":"user","uuid":"u1","message":{"content":"keep me"}}`,
		`{"type":"summary","summary":"irrelevant"}`,
	)

	msgs, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 1 || msgs[0].UUID != "u1" {
		t.Fatalf("expected only the user message, got %+v", msgs)
	}
}

func TestRead_WhenGivenMalformedLines_ShouldSkipThem(t *testing.T) {
	path := writeTranscript(t,
		`not json at all`,
		``,
		`{"type":"user","uuid":"u1","message":{"content":"survivor"}}`,
	)

	msgs, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "survivor" {
		t.Fatalf("expected the valid message only, got %+v", msgs)
	}
}

func TestRead_WhenCalledTwice_ShouldReturnTheSameSequence(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","uuid":"u1","message":{"content":"one"}}`,
		`{"type":"user","uuid":"u2","message":{"content":"two"}}`,
	)

	first, err := Read(path)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := Read(path)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("message %d differs between reads", i)
		}
	}
}

func TestRead_WhenFileMissing_ShouldReturnError(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
