package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Event types emitted by events-mode webhooks.
const (
	EventBegin = "begin"
	EventItem  = "item"
	EventEnd   = "end"
	EventError = "error"
)

// Event is one newline-delimited JSON record in an events-mode response.
type Event struct {
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RecordError is a structured error event received on the stream. It carries
// the serialized record so callers can inspect the payload.
type RecordError struct {
	Record string
}

func (e *RecordError) Error() string {
	return "stream error event: " + e.Record
}

// Events parses newline-delimited JSON records out of cumulative snapshots.
//
// It tracks how many bytes of the buffer were already consumed, so every tick
// processes exactly the lines completed since the previous tick, however many
// arrived. "item" records append their content, "error" records fail the
// exchange, "begin" and "end" are observed but not acted upon.
type Events struct {
	consumed int
	pending  string
	text     strings.Builder
}

// NewEvents creates an events-mode accumulator.
func NewEvents() *Events {
	return &Events{}
}

// Apply parses every line completed since the previous tick. A trailing
// fragment without a terminating newline is withheld until it completes or
// Finish is called.
func (e *Events) Apply(snapshot string) (string, error) {
	if len(snapshot) < e.consumed {
		return e.text.String(), fmt.Errorf("snapshot shrank from %d to %d bytes", e.consumed, len(snapshot))
	}

	rest := snapshot[e.consumed:]
	for {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			break
		}
		line := rest[:idx]
		rest = rest[idx+1:]
		e.consumed += idx + 1

		if err := e.ingest(line); err != nil {
			return e.text.String(), err
		}
	}

	e.pending = rest
	return e.text.String(), nil
}

// Finish parses the unterminated trailing line, if any. The response body may
// legally end without a final newline.
func (e *Events) Finish() (string, error) {
	pending := e.pending
	e.pending = ""
	e.consumed += len(pending)

	if err := e.ingest(pending); err != nil {
		return e.text.String(), err
	}
	return e.text.String(), nil
}

func (e *Events) ingest(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return fmt.Errorf("malformed stream line: %w", err)
	}

	switch ev.Type {
	case EventItem:
		e.text.WriteString(ev.Content)
	case EventError:
		return &RecordError{Record: line}
	case EventBegin, EventEnd:
		slog.Debug("stream_event_observed", "type", ev.Type)
	default:
		slog.Debug("stream_event_unknown", "type", ev.Type)
	}
	return nil
}

var _ Accumulator = (*Events)(nil)
