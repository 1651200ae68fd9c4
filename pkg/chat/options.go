package chat

import (
	"time"

	"hookchat/pkg/chat/transport"
)

// Mode selects how streamed response bodies are interpreted.
type Mode string

const (
	// ModeText treats every progress tick as the full response text so far.
	ModeText Mode = "text"
	// ModeEvents treats the response as newline-delimited JSON event records.
	ModeEvents Mode = "events"
)

// Options configures a Conversation. Zero values get sensible defaults.
type Options struct {
	// Endpoint is the webhook URL sends are posted to.
	Endpoint string
	// Headers extend and override the default request headers.
	Headers map[string]string
	// Mode selects the response interpretation. Defaults to ModeText.
	Mode Mode

	// ExtraBody fields are merged into the default payload.
	ExtraBody map[string]any
	// BodyFunc, when set, builds the whole payload from the outgoing user
	// message instead of the default shape.
	BodyFunc func(userMsg Message) map[string]any

	// Transport issues the exchanges. Defaults to an HTTPStreamer without a
	// client timeout.
	Transport transport.Streamer

	// OnChunk is called with the full assistant text after each applied tick.
	OnChunk func(text string)
	// OnFinish is called with the assistant message's final state after a
	// successful send.
	OnFinish func(msg Message)
	// OnError is called for every non-cancellation failure.
	OnError func(err error)

	// Now and NewID are test seams.
	Now   func() time.Time
	NewID func(t time.Time) string
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeText
	}
	if o.Transport == nil {
		o.Transport = transport.NewHTTPStreamer(nil)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = NewID
	}
	return o
}
