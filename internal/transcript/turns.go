package transcript

import (
	"path/filepath"
	"strings"

	"steward/internal/id"
	"steward/internal/model"
)

// PairTurns assembles (user, assistant) turns from parent-child links, in
// source order. An assistant message whose parent is a user message forms a
// turn; orphans on either side are dropped.
func PairTurns(messages []model.Message, path string) []model.Turn {
	byUUID := make(map[id.Message]model.Message, len(messages))
	for _, m := range messages {
		if m.UUID != "" {
			byUUID[m.UUID] = m
		}
	}

	var turns []model.Turn
	for _, m := range messages {
		if m.Role != "assistant" || m.ParentUUID == "" {
			continue
		}
		parent, ok := byUUID[m.ParentUUID]
		if !ok || parent.Role != "user" {
			continue
		}

		turns = append(turns, model.Turn{
			ID:            parent.UUID,
			SessionID:     sessionOf(parent, m),
			ProjectPath:   projectPath(parent, path),
			Timestamp:     parent.Timestamp,
			UserText:      parent.Content,
			AssistantText: m.Content,
		})
	}
	return turns
}

func sessionOf(user, assistant model.Message) id.Session {
	if user.SessionID != "" {
		return user.SessionID
	}
	return assistant.SessionID
}

// projectPath prefers the message's recorded working directory. Failing
// that, it unflattens the transcript's parent directory name, which the
// producer derives from the project path with "/" replaced by "-".
func projectPath(user model.Message, path string) string {
	if user.CWD != "" {
		return user.CWD
	}
	dir := filepath.Base(filepath.Dir(path))
	if strings.HasPrefix(dir, "-") {
		return strings.ReplaceAll(dir, "-", "/")
	}
	return dir
}
