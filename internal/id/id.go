// Package id defines distinct identifier types for the domain.
//
// Pane, session, message, and chunk identifiers are all strings on the wire,
// and mixing them up is the classic bug in this domain: a session id rotates
// on every resume while a pane id is stable for the life of the pane. Each
// gets its own type so a mix-up fails to compile.
package id

// Pane identifies a terminal-multiplexer pane. Stable for the pane's
// lifetime; the primary key of the session store.
type Pane string

// Session identifies one assistant process invocation. Rotates on resume.
type Session string

// Message identifies a single transcript message.
type Message string

// Chunk identifies a unit of embedding and retrieval. Equal to the turn's
// user-message id for single-chunk turns, or "{turn}:{index}" otherwise.
type Chunk string

func (p Pane) String() string    { return string(p) }
func (s Session) String() string { return string(s) }
func (m Message) String() string { return string(m) }
func (c Chunk) String() string   { return string(c) }
