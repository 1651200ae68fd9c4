package chat

import (
	"testing"
	"time"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.Role != RoleUser {
		t.Errorf("Expected role 'user', got %q", msg.Role)
	}
	if msg.ID == "" {
		t.Error("Expected a generated id")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("Expected a creation timestamp")
	}
	if len(msg.Parts) != 1 || msg.Parts[0].Type != PartText {
		t.Fatalf("Expected a single text part, got %+v", msg.Parts)
	}
	if msg.Text() != "hello" {
		t.Errorf("Expected text 'hello', got %q", msg.Text())
	}
}

func TestMessage_TextJoinsTextParts(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Parts: []Part{
			TextPart("Hello"),
			{Type: PartImage, URL: "https://example.test/cat.png"},
			TextPart(" world"),
		},
	}

	if got := msg.Text(); got != "Hello world" {
		t.Errorf("Expected 'Hello world', got %q", got)
	}
}

func TestNewID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID(now.Add(time.Duration(i) * time.Millisecond))
		if seen[id] {
			t.Fatalf("Duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
