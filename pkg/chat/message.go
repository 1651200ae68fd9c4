// Package chat implements an incremental chat conversation against a
// streaming webhook: an ordered message store, a single-flight request
// controller, and incremental assistant-message updates driven by partial
// response downloads.
package chat

import (
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Part content types.
const (
	PartText  = "text"
	PartImage = "image"
	PartFile  = "file"
)

// Part is one piece of message content. Text parts carry text; image and
// file parts carry a URL.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// Message is a single chat message. ID and CreatedAt are set once at
// construction and never change.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Parts     []Part    `json:"parts"`
	CreatedAt time.Time `json:"createdAt"`
}

// Text joins the message's text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// NewUserMessage builds a user message with a fresh id and timestamp.
func NewUserMessage(text string) Message {
	now := time.Now()
	return Message{
		ID:        NewID(now),
		Role:      RoleUser,
		Parts:     []Part{TextPart(text)},
		CreatedAt: now,
	}
}

// NewID generates a ULID for the given timestamp.
func NewID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
