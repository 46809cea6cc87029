package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyReply is returned when the model answered with nothing.
	ErrEmptyReply = errors.New("empty LLM reply")
	// ErrNotJSON is returned when the reply holds no JSON object.
	ErrNotJSON = errors.New("LLM reply is not JSON")
)

// DecodeReply unmarshals a model reply into v. Markdown code fences and any
// chatter around the outermost JSON object are ignored.
func DecodeReply(reply string, v any) error {
	body := stripFence(strings.TrimSpace(reply))
	if body == "" {
		return ErrEmptyReply
	}

	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return ErrNotJSON
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return ""
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
