package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"steward/internal/config"
	"steward/internal/indexer"
)

// TestIndexAgainstLiveServices runs the real pipeline against a local
// embedding backend and vector store. It skips unless both are reachable,
// and always skips under SKIP_INTEGRATION.
func TestIndexAgainstLiveServices(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}

	cfg := config.Default()
	client := &http.Client{Timeout: 2 * time.Second}
	for _, url := range []string{cfg.EmbedBase, cfg.QdrantBase} {
		if _, err := client.Get(url); err != nil {
			t.Skipf("service %s not reachable: %v", url, err)
		}
	}

	root := t.TempDir()
	dir := filepath.Join(root, "-tmp-integration")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	lines := `{"type":"user","uuid":"int-u1","sessionId":"int-s1","timestamp":"2025-06-01T12:00:00Z","cwd":"/tmp/integration","message":{"content":"integration check"}}
{"type":"assistant","uuid":"int-a1","parentUuid":"int-u1","sessionId":"int-s1","timestamp":"2025-06-01T12:00:01Z","message":{"content":[{"type":"text","text":"looks alive"}]}}
`
	if err := os.WriteFile(filepath.Join(dir, "int.jsonl"), []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	cfg.Collection = "steward_integration_test"
	ix := indexer.New(cfg)
	ix.Out = os.Stderr

	if err := ix.Run(root, indexer.Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// The second run must find nothing new.
	var second bytes.Buffer
	ix.Out = &second
	if err := ix.Run(root, indexer.Options{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(second.String(), "New: 0") {
		t.Errorf("expected nothing new on the second run, got %q", second.String())
	}
}
