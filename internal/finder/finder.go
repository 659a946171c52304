// Package finder embeds a query, searches the vector store, and joins hits
// against live pane state.
package finder

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"steward/internal/embedding"
	"steward/internal/id"
	"steward/internal/model"
	"steward/internal/qdrant"
)

// SessionLookup resolves a session id to its live pane record, if any.
// *store.Store satisfies it; a nil lookup renders every hit as not running.
type SessionLookup interface {
	FindBySessionID(id.Session) (*model.PaneSession, error)
}

// Options shape one search.
type Options struct {
	Limit     int
	Project   string
	JSON      bool
	Threshold *float64
}

// DefaultLimit is the result count when none is given.
const DefaultLimit = 10

// Finder holds the search collaborators.
type Finder struct {
	Embedder *embedding.Client
	Store    *qdrant.Client
	Sessions SessionLookup
	Out      io.Writer
}

// Hit is one search result joined with live status.
type Hit struct {
	ChunkID     string  `json:"chunk_id"`
	SessionID   string  `json:"session_id"`
	ProjectPath string  `json:"project_path"`
	Timestamp   string  `json:"timestamp"`
	Content     string  `json:"content"`
	Context     string  `json:"context,omitempty"`
	Score       float64 `json:"score"`
	Running     bool    `json:"running"`
	Location    string  `json:"tmux_location,omitempty"`
	State       string  `json:"state,omitempty"`
}

// Search runs the query end to end and renders to Out. Backend failures
// short-circuit; an empty result is success.
func (f *Finder) Search(query string, opts Options) error {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	vec, err := f.Embedder.Embed(query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	results, err := f.Store.Search(qdrant.SearchParams{
		Vector:      vec,
		Limit:       opts.Limit,
		ProjectPath: opts.Project,
		Threshold:   opts.Threshold,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, f.join(r))
	}

	if opts.JSON {
		return json.NewEncoder(f.Out).Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(f.Out, "No results.")
		return nil
	}
	for i, h := range hits {
		f.renderHuman(i+1, h)
	}
	return nil
}

// join looks up the hit's session in the pane store. Lookup failures are
// treated as not running; search must not fail because the session
// database is unavailable.
func (f *Finder) join(r model.SearchResult) Hit {
	h := Hit{
		ChunkID:     string(r.ChunkID),
		SessionID:   string(r.SessionID),
		ProjectPath: r.ProjectPath,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
		Content:     r.Content,
		Context:     r.Context,
		Score:       r.Score,
	}
	if f.Sessions == nil {
		return h
	}
	rec, err := f.Sessions.FindBySessionID(r.SessionID)
	if err != nil || rec == nil {
		return h
	}
	h.Running = true
	h.Location = rec.TmuxLocation
	h.State = rec.State.Encode()
	return h
}

func (f *Finder) renderHuman(rank int, h Hit) {
	where := "not running"
	if h.Running {
		where = h.Location + " " + StateGlyph(h.State)
	}
	fmt.Fprintf(f.Out, "[%d] score=%.4f  %s  %s  (%s)\n",
		rank, h.Score, where, Title(h.Content), h.ProjectPath)
	fmt.Fprintf(f.Out, "    %s\n\n", preview(h.Content, 200))
}

// StateGlyph compresses a stored state into one dashboard character.
func StateGlyph(encoded string) string {
	if encoded == "working" {
		return "⚒"
	}
	return "●"
}

// Title extracts a one-line label from a chunk's combined text.
func Title(content string) string {
	line := content
	line = strings.TrimPrefix(line, "User: ")
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return preview(line, 60)
}

func preview(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
