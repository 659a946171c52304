// Package tmux reads the pane context of the current process.
package tmux

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"steward/internal/id"
)

// Context locates a process inside the multiplexer.
type Context struct {
	PaneID   id.Pane
	Session  string
	Window   int
	Pane     int
	Location string // "{session}:{window}.{pane}"
}

// Reader queries tmux for display variables. The display function is a
// field so tests can substitute the subprocess call.
type Reader struct {
	display func(format string) (string, error)
	inTmux  func() bool
}

// NewReader returns a Reader backed by the tmux binary.
func NewReader() *Reader {
	return &Reader{
		display: runDisplayMessage,
		inTmux:  func() bool { return os.Getenv("TMUX") != "" },
	}
}

// Current returns the pane context, or ok=false when the process is not
// inside tmux or any of the four queries fails. Absence of context is not
// an error; it silences downstream state updates.
func (r *Reader) Current() (Context, bool) {
	if !r.inTmux() {
		return Context{}, false
	}

	pane, err := r.display("#{pane_id}")
	if err != nil || pane == "" {
		return Context{}, false
	}
	session, err := r.display("#{session_name}")
	if err != nil || session == "" {
		return Context{}, false
	}
	windowStr, err := r.display("#{window_index}")
	if err != nil {
		return Context{}, false
	}
	paneStr, err := r.display("#{pane_index}")
	if err != nil {
		return Context{}, false
	}

	window, err := strconv.Atoi(windowStr)
	if err != nil {
		return Context{}, false
	}
	paneIdx, err := strconv.Atoi(paneStr)
	if err != nil {
		return Context{}, false
	}

	return Context{
		PaneID:   id.Pane(pane),
		Session:  session,
		Window:   window,
		Pane:     paneIdx,
		Location: fmt.Sprintf("%s:%d.%d", session, window, paneIdx),
	}, true
}

func runDisplayMessage(format string) (string, error) {
	out, err := exec.Command("tmux", "display-message", "-p", format).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
