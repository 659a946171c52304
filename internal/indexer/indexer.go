// Package indexer drives the transcript indexing pipeline: discover,
// parse, chunk, diff against the vector store, embed, upsert.
package indexer

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"steward/internal/chunk"
	"steward/internal/config"
	"steward/internal/embedding"
	"steward/internal/id"
	"steward/internal/model"
	"steward/internal/qdrant"
	"steward/internal/transcript"
)

// DefaultBatchSize is the number of chunks embedded and upserted together.
const DefaultBatchSize = 50

// Options configure one indexer run.
type Options struct {
	Parallel   int    // embedding workers, default embedding.DefaultWorkers
	Project    string // restrict to transcripts of one project
	DryRun     bool   // stop after the plan
	BatchSize  int    // default DefaultBatchSize
	ErrorsFile string // JSONL sink for failed chunks, "" = none
}

// FileInfo describes one discovered transcript file.
type FileInfo struct {
	Path  string
	Mtime time.Time
	Size  int64
}

// Plan summarizes the work before embedding starts.
type Plan struct {
	FilesSeen    int
	ChunksParsed int
	Existing     int
	New          []model.Chunk
}

// Indexer holds the pipeline's collaborators.
type Indexer struct {
	Store    *qdrant.Client
	Embedder *embedding.Client
	Out      io.Writer // progress and summary
	Errs     io.Writer // diagnostics
}

// New wires an Indexer from configuration.
func New(cfg config.Config) *Indexer {
	return &Indexer{
		Store:    qdrant.NewClient(cfg.QdrantBase, cfg.Collection),
		Embedder: embedding.NewClient(cfg.EmbedBase, embedding.ModelByName(cfg.EmbedModel)),
		Out:      os.Stdout,
		Errs:     os.Stderr,
	}
}

// Discover walks the transcripts root and returns every .jsonl file,
// optionally filtered to one project. The producer flattens project paths
// into directory names with "/" replaced by "-", so the filter accepts
// either spelling.
func Discover(root, project string) ([]FileInfo, error) {
	flattened := strings.ReplaceAll(project, "/", "-")

	var out []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		if project != "" && !strings.Contains(path, project) && !strings.Contains(path, flattened) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out = append(out, FileInfo{Path: path, Mtime: info.ModTime(), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}

// ParseAll streams every file into chunks. A file that fails to read is
// skipped; transcripts disappear mid-run when sessions are pruned.
func ParseAll(files []FileInfo) []model.Chunk {
	var chunks []model.Chunk
	for _, f := range files {
		messages, err := transcript.Read(f.Path)
		if err != nil {
			continue
		}
		for _, turn := range transcript.PairTurns(messages, f.Path) {
			chunks = append(chunks, chunk.Split(turn)...)
		}
	}
	return chunks
}

// Diff drops every chunk whose id the store already has.
func Diff(parsed []model.Chunk, existing []id.Chunk) []model.Chunk {
	seen := make(map[id.Chunk]struct{}, len(existing))
	for _, cid := range existing {
		seen[cid] = struct{}{}
	}

	var out []model.Chunk
	for _, c := range parsed {
		if _, ok := seen[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Batches partitions the work set. Every batch except possibly the last has
// exactly size elements; together they cover the input without overlap.
func Batches(chunks []model.Chunk, size int) [][]model.Chunk {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]model.Chunk
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		out = append(out, chunks[start:end])
	}
	return out
}

// Run executes the full pipeline. Per-item failures are sinked and
// reported; only environment-level problems return an error.
func (ix *Indexer) Run(root string, opts Options) error {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	files, err := Discover(root, opts.Project)
	if err != nil {
		return err
	}

	parsed := ParseAll(files)

	dim, err := ix.dimension()
	if err != nil {
		return err
	}
	if err := ix.Store.EnsureCollection(dim); err != nil {
		return err
	}

	existing, err := ix.Store.ScrollChunkIDs()
	if err != nil {
		return fmt.Errorf("scroll existing ids: %w", err)
	}

	work := Diff(parsed, existing)
	plan := Plan{
		FilesSeen:    len(files),
		ChunksParsed: len(parsed),
		Existing:     len(parsed) - len(work),
		New:          work,
	}

	fmt.Fprintf(ix.Out, "Files: %d  Chunks: %d  Indexed: %d  New: %d\n",
		plan.FilesSeen, plan.ChunksParsed, plan.Existing, len(plan.New))

	if opts.DryRun || len(work) == 0 {
		return nil
	}

	var (
		embeddedCount int
		written       int
		failures      []embedding.Failure
	)
	for _, batch := range Batches(work, opts.BatchSize) {
		embedded, failed := embedding.EmbedAll(batch, ix.Embedder, opts.Parallel)
		embeddedCount += len(embedded)
		failures = append(failures, failed...)

		if err := ix.Store.Upsert(embedded); err != nil {
			// The whole batch's successes go down with the upsert.
			for _, e := range embedded {
				failures = append(failures, embedding.Failure{Chunk: e.Chunk, Err: err.Error()})
			}
			fmt.Fprintf(ix.Errs, "steward: upsert batch: %v\n", err)
		} else {
			written += len(embedded)
		}

		fmt.Fprintf(ix.Out, "  embedded %d  written %d  errors %d  of %d\n",
			embeddedCount, written, len(failures), len(work))
	}

	fmt.Fprintf(ix.Out, "Done: %d written, %d errors.\n", written, len(failures))

	if opts.ErrorsFile != "" && len(failures) > 0 {
		if err := writeErrorsFile(opts.ErrorsFile, failures); err != nil {
			fmt.Fprintf(ix.Errs, "steward: write errors file: %v\n", err)
		}
	}
	return nil
}

// dimension resolves the vector size, probing the backend when the model
// preset doesn't pin one.
func (ix *Indexer) dimension() (int, error) {
	if d := ix.Embedder.Model().Dimension; d > 0 {
		return d, nil
	}
	vec, err := ix.Embedder.Embed("hello")
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	return len(vec), nil
}

// errorRecord is one line of the JSONL errors file.
type errorRecord struct {
	ChunkID        string `json:"chunk_id"`
	SessionID      string `json:"session_id"`
	ProjectPath    string `json:"project_path"`
	Error          string `json:"error"`
	ContentLength  int    `json:"content_length"`
	ContentPreview string `json:"content_preview"`
}

func writeErrorsFile(path string, failures []embedding.Failure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, fail := range failures {
		preview := fail.Chunk.Content
		if len(preview) > 200 {
			preview = preview[:200]
		}
		rec := errorRecord{
			ChunkID:        string(fail.Chunk.ID),
			SessionID:      string(fail.Chunk.SessionID),
			ProjectPath:    fail.Chunk.ProjectPath,
			Error:          fail.Err,
			ContentLength:  len(fail.Chunk.Content),
			ContentPreview: preview,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
