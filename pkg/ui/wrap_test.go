package ui

import (
	"reflect"
	"testing"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "fits on one line",
			text:  "hello world",
			width: 20,
			want:  []string{"hello world"},
		},
		{
			name:  "wraps at word boundary",
			text:  "the quick brown fox jumps",
			width: 10,
			want:  []string{"the quick", "brown fox", "jumps"},
		},
		{
			name:  "splits overlong word",
			text:  "abcdefghij",
			width: 4,
			want:  []string{"abcd", "efgh", "ij"},
		},
		{
			name:  "preserves hard newlines",
			text:  "one\ntwo",
			width: 10,
			want:  []string{"one", "two"},
		},
		{
			name:  "empty text",
			text:  "",
			width: 10,
			want:  []string{""},
		},
		{
			name:  "word continues after split remainder",
			text:  "abcdef gh",
			width: 4,
			want:  []string{"abcd", "ef", "gh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"ansi color", "\x1b[31mred\x1b[0m text", "red text"},
		{"control chars", "a\x07b\x00c", "abc"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeText(tt.in); got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitByWidthWideRunes(t *testing.T) {
	got := splitByWidth("日本語", 4)
	want := []string{"日本", "語"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitByWidth() = %q, want %q", got, want)
	}
}

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer line of text", 10, "a longe..."},
		{"abc", 2, "ab"},
		{"anything", 0, ""},
	}

	for _, tt := range tests {
		if got := truncateToWidth(tt.text, tt.width); got != tt.want {
			t.Errorf("truncateToWidth(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
