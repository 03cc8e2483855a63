package study

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON parses a model reply into v. Providers without native JSON
// output sometimes wrap the object in a code fence or add prose around it.
func decodeJSON(text string, v any) error {
	body := strings.TrimSpace(text)
	if body == "" {
		return ErrNoResponse
	}

	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```")
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	if err := json.Unmarshal([]byte(body), v); err == nil {
		return nil
	}

	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("response is not a JSON object")
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
