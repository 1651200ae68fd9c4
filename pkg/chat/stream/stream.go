// Package stream turns partial response-body snapshots into assistant text.
//
// Transports deliver the cumulative body read so far on every progress tick,
// not a delta. An Accumulator re-derives the growing assistant text from that
// sequence of snapshots.
package stream

// Accumulator consumes cumulative body snapshots and yields assistant text.
type Accumulator interface {
	// Apply ingests the latest snapshot and returns the full assistant text
	// accumulated so far.
	Apply(snapshot string) (string, error)
	// Finish flushes anything still buffered once the body is complete and
	// returns the final text.
	Finish() (string, error)
}

// Text treats every snapshot as the entire response text so far and returns
// it verbatim. Repeated identical snapshots are idempotent.
type Text struct {
	current string
}

// NewText creates a plain-text accumulator.
func NewText() *Text {
	return &Text{}
}

// Apply overwrites the accumulated text with the snapshot.
func (t *Text) Apply(snapshot string) (string, error) {
	t.current = snapshot
	return t.current, nil
}

// Finish returns the last snapshot seen.
func (t *Text) Finish() (string, error) {
	return t.current, nil
}

var _ Accumulator = (*Text)(nil)
