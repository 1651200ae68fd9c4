package stream

import (
	"testing"
)

func TestText_LastWriteWins(t *testing.T) {
	acc := NewText()

	ticks := []string{"He", "Hello", "Hello!"}
	var got string
	for _, tick := range ticks {
		text, err := acc.Apply(tick)
		if err != nil {
			t.Fatalf("Apply(%q) error: %v", tick, err)
		}
		got = text
	}

	if got != "Hello!" {
		t.Errorf("Expected final text 'Hello!', got %q", got)
	}

	final, err := acc.Finish()
	if err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if final != "Hello!" {
		t.Errorf("Expected Finish() to return 'Hello!', got %q", final)
	}
}

func TestText_RepeatedSnapshotIdempotent(t *testing.T) {
	acc := NewText()

	for i := 0; i < 3; i++ {
		text, err := acc.Apply("same")
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if text != "same" {
			t.Errorf("Expected text 'same', got %q", text)
		}
	}
}

func TestText_EmptyBody(t *testing.T) {
	acc := NewText()

	final, err := acc.Finish()
	if err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if final != "" {
		t.Errorf("Expected empty final text, got %q", final)
	}
}
