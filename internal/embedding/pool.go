package embedding

import (
	"golang.org/x/sync/errgroup"

	"steward/internal/model"
)

// DefaultWorkers bounds in-flight embed requests.
const DefaultWorkers = 4

// Failure pairs a chunk with the reason it could not be embedded.
type Failure struct {
	Chunk model.Chunk
	Err   string
}

// EmbedAll embeds every chunk with at most workers requests in flight.
// Each job succeeds or fails independently; a failure never cancels its
// peers. Output ordering is not part of the contract.
func EmbedAll(chunks []model.Chunk, c *Client, workers int) ([]model.EmbeddedChunk, []Failure) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	type slot struct {
		vector []float32
		err    error
	}
	slots := make([]slot, len(chunks))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, ch := range chunks {
		g.Go(func() error {
			vec, err := c.Embed(ch.Content)
			slots[i] = slot{vector: vec, err: err}
			return nil
		})
	}
	g.Wait()

	var (
		embedded []model.EmbeddedChunk
		failures []Failure
	)
	for i, s := range slots {
		if s.err != nil {
			failures = append(failures, Failure{Chunk: chunks[i], Err: s.err.Error()})
			continue
		}
		embedded = append(embedded, model.EmbeddedChunk{Chunk: chunks[i], Vector: s.vector})
	}
	return embedded, failures
}
