package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"steward/internal/config"
	"steward/internal/embedding"
	"steward/internal/finder"
	"steward/internal/indexer"
	"steward/internal/model"
	"steward/internal/qdrant"
	"steward/internal/store"
	"steward/internal/tmux"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "index":
		runIndex(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "sessions":
		runSessions(os.Args[2:])
	case "hook":
		runHook()
		os.Exit(0) // never block the producer
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "steward: unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `steward - transcript search with live tmux session tracking

usage: steward <command> [options]

commands:
  index      incrementally index transcripts into the vector store
  search     semantic search over indexed transcripts
  sessions   list live panes and their attention state
  hook       read one lifecycle event from stdin (for hook wiring)

index options:
  --parallel N       embedding workers (default 4)
  --project PATH     only transcripts of this project
  --dry-run          report the plan without indexing
  --batch N          chunks per batch (default 50)
  --errors-file PATH write failed chunks as JSONL

search options:
  steward search [options] QUERY
  --limit N          max results (default 10)
  --project PATH     exact project filter
  --threshold F      minimum score
  --json             emit JSON instead of text

environment:
  STEWARD_DB            session database path
  STEWARD_TRANSCRIPTS   transcripts root
  STEWARD_EMBED_MODEL   embedding model name
  STEWARD_COLLECTION    vector store collection
  OLLAMA_HOST           embedding backend
  QDRANT_URL            vector store
`)
}

// --- index ---

func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	parallel := fs.Int("parallel", embedding.DefaultWorkers, "embedding workers")
	project := fs.String("project", "", "only transcripts of this project")
	dryRun := fs.Bool("dry-run", false, "report the plan without indexing")
	batch := fs.Int("batch", indexer.DefaultBatchSize, "chunks per batch")
	errorsFile := fs.String("errors-file", "", "JSONL sink for failed chunks")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := config.Default()
	ix := indexer.New(cfg)
	err := ix.Run(cfg.TranscriptsRoot, indexer.Options{
		Parallel:   *parallel,
		Project:    *project,
		DryRun:     *dryRun,
		BatchSize:  *batch,
		ErrorsFile: *errorsFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "steward: %v\n", err)
		os.Exit(1)
	}
}

// --- search ---

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	limit := fs.Int("limit", finder.DefaultLimit, "max results")
	project := fs.String("project", "", "exact project filter")
	asJSON := fs.Bool("json", false, "emit JSON")
	thresholdStr := fs.String("threshold", "", "minimum score")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "steward: search needs a query")
		os.Exit(1)
	}

	var threshold *float64
	if *thresholdStr != "" {
		v, err := strconv.ParseFloat(*thresholdStr, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "steward: invalid --threshold %q\n", *thresholdStr)
			os.Exit(1)
		}
		threshold = &v
	}

	cfg := config.Default()
	f := &finder.Finder{
		Embedder: embedding.NewClient(cfg.EmbedBase, embedding.ModelByName(cfg.EmbedModel)),
		Store:    qdrant.NewClient(cfg.QdrantBase, cfg.Collection),
		Sessions: openSessionsQuiet(cfg),
		Out:      os.Stdout,
	}

	err := f.Search(query, finder.Options{
		Limit:     *limit,
		Project:   *project,
		JSON:      *asJSON,
		Threshold: threshold,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "steward: %v\n", err)
		os.Exit(1)
	}
}

// openSessionsQuiet opens the pane store for joins. A missing or locked
// database only downgrades hits to "not running".
func openSessionsQuiet(cfg config.Config) finder.SessionLookup {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil
	}
	return st
}

// --- sessions ---

func runSessions(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := config.Default()
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "steward: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "steward: %v\n", err)
		os.Exit(1)
	}

	records, err := st.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "steward: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		printSessionsJSON(os.Stdout, records)
		return
	}

	if len(records) == 0 {
		fmt.Println("No live sessions.")
		return
	}
	for _, r := range records {
		fmt.Printf("%-12s %s %-26s %s  (updated %s)\n",
			r.TmuxLocation, finder.StateGlyph(r.State.Encode()), r.State.Encode(),
			r.CWD, age(r.LastUpdated))
	}
}

func printSessionsJSON(w io.Writer, records []model.PaneSession) {
	type row struct {
		PaneID       string `json:"pane_id"`
		TmuxLocation string `json:"tmux_location"`
		SessionID    string `json:"session_id"`
		CWD          string `json:"cwd"`
		State        string `json:"state"`
		FirstSeen    string `json:"first_seen"`
		LastUpdated  string `json:"last_updated"`
	}
	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = row{
			PaneID:       string(r.PaneID),
			TmuxLocation: r.TmuxLocation,
			SessionID:    string(r.SessionID),
			CWD:          r.CWD,
			State:        r.State.Encode(),
			FirstSeen:    r.FirstSeen.UTC().Format(time.RFC3339),
			LastUpdated:  r.LastUpdated.UTC().Format(time.RFC3339),
		}
	}
	json.NewEncoder(w).Encode(rows)
}

func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// --- hook ---

// runHook applies one lifecycle event to the pane store. Every failure
// path is absorbed: the producer blocks on this process, so it must exit
// zero fast no matter what.
func runHook() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return
	}

	in, ok := model.DecodeEvent(data)
	if !ok {
		return
	}

	ctx, ok := tmux.NewReader().Current()
	if !ok {
		return
	}

	cfg := config.Default()
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "steward: open store: %v\n", err)
		return
	}
	defer st.Close()
	if err := st.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "steward: init store: %v\n", err)
		return
	}

	now := time.Now().UTC()

	name, detail := describeEvent(in.Event)
	if err := st.InsertEvent(ctx.PaneID, in.SessionID, name, detail, now); err != nil {
		fmt.Fprintf(os.Stderr, "steward: audit event: %v\n", err)
	}

	next, remove := model.Transition(in.Event)
	switch {
	case remove:
		if err := st.Delete(ctx.PaneID); err != nil {
			fmt.Fprintf(os.Stderr, "steward: delete pane: %v\n", err)
		}
	case next != nil:
		rec := model.PaneSession{
			PaneID:         ctx.PaneID,
			TmuxSession:    ctx.Session,
			TmuxWindow:     ctx.Window,
			TmuxPane:       ctx.Pane,
			TmuxLocation:   ctx.Location,
			SessionID:      in.SessionID,
			CWD:            in.CWD,
			TranscriptPath: in.TranscriptPath,
			State:          *next,
			FirstSeen:      now,
			LastUpdated:    now,
		}
		if err := st.Upsert(rec); err != nil {
			fmt.Fprintf(os.Stderr, "steward: upsert pane: %v\n", err)
		}
	}
}

// describeEvent flattens an event into its audit-log row.
func describeEvent(e model.Event) (name, detail string) {
	switch ev := e.(type) {
	case model.SessionStart:
		return "SessionStart", ev.Source
	case model.Stop:
		return "Stop", strconv.FormatBool(ev.Active)
	case model.PermissionRequest:
		return "PermissionRequest", ev.ToolName
	case model.UserPromptSubmit:
		return "UserPromptSubmit", ev.Prompt
	case model.SessionEnd:
		return "SessionEnd", ev.Reason
	case model.Notification:
		return "Notification", string(ev.Kind) + ": " + ev.Message
	}
	return "Unknown", ""
}
