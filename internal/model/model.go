// Package model defines the domain types shared across the application.
package model

import (
	"time"

	"steward/internal/id"
)

// PaneSession is the per-pane record of a live assistant session. The pane
// id is the identity; the session id is a mutable attribute that changes on
// resume, with LastSessionID bridging the previous invocation.
type PaneSession struct {
	PaneID         id.Pane
	TmuxSession    string
	TmuxWindow     int
	TmuxPane       int
	TmuxLocation   string // "{session}:{window}.{pane}"
	SessionID      id.Session
	CWD            string
	TranscriptPath string
	State          State
	FirstSeen      time.Time
	LastUpdated    time.Time
	LastSessionID  id.Session
}

// Message is a conversation message extracted from a transcript.
type Message struct {
	Role       string // "user" or "assistant"
	UUID       id.Message
	ParentUUID id.Message
	SessionID  id.Session
	Timestamp  time.Time
	CWD        string
	Content    string
}

// Turn pairs a user message with the assistant message that replied to it.
// Its identity is the user message's id.
type Turn struct {
	ID            id.Message
	SessionID     id.Session
	ProjectPath   string
	Timestamp     time.Time
	UserText      string
	AssistantText string
}

// Chunk is the unit of embedding and retrieval.
type Chunk struct {
	ID          id.Chunk
	SessionID   id.Session
	ProjectPath string
	Timestamp   time.Time
	Content     string
	Context     string // reserved for a later enrichment stage
}

// EmbeddedChunk is a chunk plus its dense vector.
type EmbeddedChunk struct {
	Chunk
	Vector []float32
}

// SearchResult is one nearest-neighbour hit from the vector store.
type SearchResult struct {
	ChunkID     id.Chunk
	SessionID   id.Session
	ProjectPath string
	Timestamp   time.Time
	Content     string
	Context     string
	Score       float64
}
