// Package chunk splits turn text into embedding-sized chunks and tokenizes
// text into sparse term-frequency vectors.
package chunk

import (
	"fmt"
	"strings"

	"steward/internal/id"
	"steward/internal/model"
)

const (
	// MaxChunkChars bounds a chunk's size. Tuned for a worst case of about
	// 3 tokens per char, leaving headroom in an 8192-token context window.
	MaxChunkChars = 2500

	// OverlapChars is shared between adjacent chunks so a semantic unit
	// straddling a boundary is retrievable from either side.
	OverlapChars = MaxChunkChars / 10

	stride = MaxChunkChars - OverlapChars
)

// CombinedText renders a turn as the single string that gets chunked and
// embedded.
func CombinedText(t model.Turn) string {
	return "User: " + t.UserText + "\n\nAssistant: " + t.AssistantText
}

// Split chunks a turn deterministically. A turn that fits in one chunk keeps
// the turn id verbatim; longer turns get "{turn_id}:{i}" ids in emission
// order. The same turn text always yields byte-identical chunks, every
// character lands in at least one chunk, and adjacent chunks share exactly
// OverlapChars.
func Split(t model.Turn) []model.Chunk {
	text := CombinedText(t)

	base := model.Chunk{
		SessionID:   t.SessionID,
		ProjectPath: t.ProjectPath,
		Timestamp:   t.Timestamp,
	}

	if len(text) <= MaxChunkChars {
		c := base
		c.ID = id.Chunk(t.ID)
		c.Content = text
		return []model.Chunk{c}
	}

	var chunks []model.Chunk
	emit := func(content string) {
		c := base
		c.ID = id.Chunk(fmt.Sprintf("%s:%d", t.ID, len(chunks)))
		c.Content = content
		chunks = append(chunks, c)
	}

	for p := 0; ; {
		if len(text)-p <= stride {
			emit(text[p:])
			return chunks
		}
		target := p + MaxChunkChars
		if target > len(text) {
			target = len(text)
		}
		split := p + findSplitPoint(text[p:target])
		emit(text[p:split])
		// Back up by the overlap so the next chunk re-covers the split's
		// tail. The split guard keeps this a strictly forward step.
		p = split - OverlapChars
	}
}

// findSplitPoint picks where to end a chunk within its window. It prefers
// the last paragraph break, then the last space, and falls back to cutting
// at the window's end. The half-window guard stops a single early boundary
// from collapsing the chunk.
func findSplitPoint(window string) int {
	if q := strings.LastIndex(window, "\n\n"); q > len(window)/2 {
		return q + 2
	}
	if q := strings.LastIndex(window, " "); q > len(window)/2 {
		return q + 1
	}
	return len(window)
}
