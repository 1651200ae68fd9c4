package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"hookchat/pkg/chat/stream"
	"hookchat/pkg/chat/transport"
)

// ErrBusy is returned when a send starts while another is still in flight.
// Sends are serialized per conversation.
var ErrBusy = errors.New("a send is already in flight")

// ErrEmptyMessage is returned when an explicit send carries no content.
// Submit treats an empty draft as a no-op instead.
var ErrEmptyMessage = errors.New("message has no content")

// Conversation holds an ordered message list and drives one webhook exchange
// per turn. Progress callbacks arrive on the transport goroutine; all state
// is mutex-guarded.
type Conversation struct {
	opts      Options
	sessionID string

	mu       sync.Mutex
	messages []Message
	input    string
	loading  bool
	lastErr  error
	handle   *transport.Handle
	gen      int
}

// NewConversation creates an empty conversation with a fresh session id.
func NewConversation(opts Options) *Conversation {
	opts = opts.withDefaults()
	return &Conversation{
		opts:      opts,
		sessionID: opts.NewID(opts.Now()),
	}
}

// SessionID identifies the conversation in events-mode payloads.
func (c *Conversation) SessionID() string {
	return c.sessionID
}

// Messages returns a copy of the message list.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = cloneMessage(m)
	}
	return out
}

// Input returns the current draft text.
func (c *Conversation) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the draft text.
func (c *Conversation) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// IsLoading reports whether a send is in flight.
func (c *Conversation) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last send failure, or nil. It is cleared when a new send
// starts.
func (c *Conversation) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit sends the current draft as a user message and clears it. A draft
// that trims to nothing is a no-op leaving all state unchanged.
func (c *Conversation) Submit(ctx context.Context) error {
	c.mu.Lock()
	trimmed := strings.TrimSpace(c.input)
	c.mu.Unlock()

	if trimmed == "" {
		return nil
	}
	return c.AppendText(ctx, trimmed)
}

// AppendText sends text as a new user message and clears the draft. It
// blocks until the exchange settles.
func (c *Conversation) AppendText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	now := c.opts.Now()
	msg := Message{
		ID:        c.opts.NewID(now),
		Role:      RoleUser,
		Parts:     []Part{TextPart(text)},
		CreatedAt: now,
	}
	return c.send(ctx, msg, true)
}

// Append sends a fully-formed user message, leaving the draft untouched.
// Missing id, role, or timestamp are filled in.
func (c *Conversation) Append(ctx context.Context, msg Message) error {
	if len(msg.Parts) == 0 {
		return ErrEmptyMessage
	}
	if msg.Role == "" {
		msg.Role = RoleUser
	}
	if msg.ID == "" {
		msg.ID = c.opts.NewID(c.opts.Now())
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = c.opts.Now()
	}
	return c.send(ctx, msg, false)
}

// Stop cancels the in-flight exchange, if any. The assistant placeholder
// keeps whatever text already streamed in; no error is recorded. Ticks
// arriving after Stop are dropped.
func (c *Conversation) Stop() {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	if c.loading {
		c.loading = false
		c.gen++ // suppress late ticks from the cancelled exchange
	}
	c.mu.Unlock()

	if h != nil {
		h.Cancel()
	}
}

// Clear cancels any in-flight exchange and empties messages, draft, and
// error state.
func (c *Conversation) Clear() {
	c.Stop()

	c.mu.Lock()
	c.messages = nil
	c.input = ""
	c.lastErr = nil
	c.mu.Unlock()

	slog.Debug("conversation_cleared", "session_id", c.sessionID)
}

// ReplaceAssistantText replaces the text of the assistant message with the
// given id. It reports whether such a message was found; other messages and
// ordering are untouched.
func (c *Conversation) ReplaceAssistantText(id, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replaceTextLocked(id, text)
}

// send runs one conversational turn: append the user message and an empty
// assistant placeholder, post the payload, stream ticks into the
// placeholder, and settle.
func (c *Conversation) send(ctx context.Context, userMsg Message, clearInput bool) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}

	now := c.opts.Now()
	placeholder := Message{
		ID:        c.opts.NewID(now),
		Role:      RoleAssistant,
		Parts:     []Part{TextPart("")},
		CreatedAt: now,
	}
	c.messages = append(c.messages, userMsg, placeholder)
	history := make([]Message, len(c.messages)-1)
	copy(history, c.messages[:len(c.messages)-1])
	if clearInput {
		c.input = ""
	}
	c.loading = true
	c.lastErr = nil
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	payload := c.buildPayload(history, userMsg)
	acc := c.newAccumulator()

	slog.Debug("send_start",
		"session_id", c.sessionID,
		"user_message_id", userMsg.ID,
		"assistant_message_id", placeholder.ID,
		"mode", string(c.opts.Mode),
		"history_messages", len(history),
	)

	handle, err := c.opts.Transport.Start(ctx, transport.Request{
		URL:     c.opts.Endpoint,
		Headers: c.opts.Headers,
		Payload: payload,
	}, func(snapshot string) error {
		text, applyErr := acc.Apply(snapshot)
		// Text completed before a mid-buffer failure is still applied.
		if c.applyStreamText(gen, placeholder.ID, text) && c.opts.OnChunk != nil {
			c.opts.OnChunk(text)
		}
		return applyErr
	})
	if err != nil {
		return c.fail(gen, err)
	}

	c.mu.Lock()
	if c.gen == gen && c.loading {
		c.handle = handle
		c.mu.Unlock()
	} else {
		// Stopped or cleared before the handle was registered.
		c.mu.Unlock()
		handle.Cancel()
	}

	<-handle.Done()
	settleErr := handle.Err()

	if settleErr == nil {
		text, finishErr := acc.Finish()
		c.applyStreamText(gen, placeholder.ID, text)
		if finishErr != nil {
			return c.fail(gen, finishErr)
		}

		final, ok := c.finish(gen, placeholder.ID)
		if ok {
			slog.Info("send_done",
				"session_id", c.sessionID,
				"assistant_message_id", final.ID,
				"response_len", len(final.Text()),
			)
			if c.opts.OnFinish != nil {
				c.opts.OnFinish(final)
			}
		}
		return nil
	}

	if errors.Is(settleErr, context.Canceled) {
		// Quiet no-op: cancellation is not surfaced as an error.
		c.settleQuiet(gen)
		slog.Debug("send_cancelled", "assistant_message_id", placeholder.ID)
		return nil
	}

	return c.fail(gen, settleErr)
}

func (c *Conversation) newAccumulator() stream.Accumulator {
	if c.opts.Mode == ModeEvents {
		return stream.NewEvents()
	}
	return stream.NewText()
}

// applyStreamText rewrites the placeholder's text if the send is still the
// active one. Ticks from stopped or superseded sends report false.
func (c *Conversation) applyStreamText(gen int, id, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	return c.replaceTextLocked(id, text)
}

func (c *Conversation) replaceTextLocked(id, text string) bool {
	for i := range c.messages {
		m := &c.messages[i]
		if m.ID != id || m.Role != RoleAssistant {
			continue
		}
		for j := range m.Parts {
			if m.Parts[j].Type == PartText {
				m.Parts[j].Text = text
				return true
			}
		}
		m.Parts = append(m.Parts, TextPart(text))
		return true
	}
	return false
}

// finish clears the loading state and returns the placeholder's final state.
func (c *Conversation) finish(gen int, id string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return Message{}, false
	}
	c.loading = false
	c.handle = nil
	for _, m := range c.messages {
		if m.ID == id {
			return cloneMessage(m), true
		}
	}
	return Message{}, false
}

// settleQuiet clears the loading state without recording an error.
func (c *Conversation) settleQuiet(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.loading = false
	c.handle = nil
}

// fail records the error, clears the loading state, and notifies the caller.
// The assistant placeholder keeps any partial text. A send superseded by
// Stop or Clear fails quietly.
func (c *Conversation) fail(gen int, err error) error {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return nil
	}
	c.lastErr = err
	c.loading = false
	c.handle = nil
	c.mu.Unlock()

	slog.Error("send_error", "session_id", c.sessionID, "error", err)
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
	return err
}

func cloneMessage(m Message) Message {
	m.Parts = append([]Part(nil), m.Parts...)
	return m
}
