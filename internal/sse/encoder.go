// Wire-level framing for the text/event-stream protocol. This layer is pure
// formatting: it knows nothing about jobs or sessions.

package sse

import (
	"encoding/json"
	"fmt"
)

// FormatEvent frames a JSON-serializable payload as a single SSE record.
// When name is non-empty an "event:" line is included so clients can register
// a named listener. The payload is always emitted as exactly one "data:" line
// (json.Marshal never produces newlines), and the record is terminated by the
// protocol's blank line.
func FormatEvent(name string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		// Payloads are plain structs defined in this module; failing to
		// marshal one is a programming error, not a runtime condition.
		return nil, fmt.Errorf("failed to marshal sse payload: %w", err)
	}
	if name == "" {
		return []byte(fmt.Sprintf("data: %s\n\n", data)), nil
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)), nil
}

// FormatComment frames a comment-only record. Conforming clients ignore
// these; they exist to keep idle connections alive through proxies.
func FormatComment(text string) []byte {
	return []byte(fmt.Sprintf(": %s\n\n", text))
}
