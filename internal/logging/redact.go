package logging

import (
	"encoding/json"
	"strings"
)

// Redacted replaces secret values.
const Redacted = "***REDACTED***"

var redactKeys = map[string]struct{}{
	"password":      {},
	"api_key":       {},
	"apikey":        {},
	"access_token":  {},
	"refresh_token": {},
	"secret":        {},
	"image":         {},
}

// RedactJSON masks secret fields in a JSON document. Invalid JSON is returned
// unchanged.
func RedactJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}

	b, err := json.Marshal(RedactValue(v))
	if err != nil {
		return raw
	}
	return string(b)
}

// RedactValue returns a copy of v with secret map entries masked.
func RedactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if isSecretKey(k) {
				if s, ok := vv.(string); ok && s == "" {
					out[k] = s
					continue
				}
				out[k] = Redacted
				continue
			}
			out[k] = RedactValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = RedactValue(t[i])
		}
		return out
	default:
		return v
	}
}

func isSecretKey(k string) bool {
	_, ok := redactKeys[strings.ToLower(k)]
	return ok
}
