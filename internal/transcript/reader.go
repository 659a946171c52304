// Package transcript parses assistant JSONL transcript files into messages
// and turns.
package transcript

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"steward/internal/id"
	"steward/internal/model"
)

const (
	initialScanBufSize = 64 * 1024        // 64KB
	maxScanTokenSize   = 20 * 1024 * 1024 // 20MB
)

// Read parses one transcript file as newline-delimited JSON and returns its
// user and assistant messages in file order. Records of any other type, and
// lines that fail to decode, are skipped. Re-reading the same file yields
// the same sequence.
func Read(path string) ([]model.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, initialScanBufSize), maxScanTokenSize)

	var messages []model.Message
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || !gjson.Valid(line) {
			continue
		}

		role := gjson.Get(line, "type").Str
		if role != "user" && role != "assistant" {
			continue
		}

		text := extractText(gjson.Get(line, "message.content"))

		messages = append(messages, model.Message{
			Role:       role,
			UUID:       id.Message(gjson.Get(line, "uuid").Str),
			ParentUUID: id.Message(gjson.Get(line, "parentUuid").Str),
			SessionID:  id.Session(gjson.Get(line, "sessionId").Str),
			Timestamp:  parseTimestamp(gjson.Get(line, "timestamp").Str),
			CWD:        gjson.Get(line, "cwd").Str,
			Content:    text,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return messages, nil
}

// extractText pulls human-readable text from a message's content field.
// User messages carry a plain string; assistant messages carry a string or
// an array of typed items, of which only "text" items are kept.
func extractText(content gjson.Result) string {
	switch content.Type {
	case gjson.String:
		return content.Str
	case gjson.JSON:
		if !content.IsArray() {
			return ""
		}
		var parts []string
		content.ForEach(func(_, item gjson.Result) bool {
			if item.Get("type").Str == "text" {
				if text := item.Get("text").Str; text != "" {
					parts = append(parts, text)
				}
			}
			return true
		})
		return strings.Join(parts, "\n")
	}
	return ""
}

func parseTimestamp(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}
