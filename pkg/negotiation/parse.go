package negotiation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks model output that does not match the expected schema.
var ErrMalformed = errors.New("malformed structured output")

// ParseError describes why a raw completion was rejected.
type ParseError struct {
	Schema string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Schema, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// decodeStrict decodes a single JSON object into dst. Every key in required
// must be present and non-null. Surrounding prose is rejected; a single
// Markdown code fence around the object is tolerated.
func decodeStrict(raw, schema string, required []string, dst any) error {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return &ParseError{Schema: schema, Reason: "empty response"}
	}
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return &ParseError{Schema: schema, Reason: "response is not a bare JSON object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return &ParseError{Schema: schema, Reason: err.Error()}
	}
	for _, key := range required {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			return &ParseError{Schema: schema, Reason: fmt.Sprintf("missing field %q", key)}
		}
	}

	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return &ParseError{Schema: schema, Reason: err.Error()}
	}
	return nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop an optional language tag on the opening fence line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.Contains(inner[:nl], "{") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
