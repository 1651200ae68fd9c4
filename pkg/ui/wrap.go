package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// sanitizeText strips ANSI escape sequences and control characters that a
// webhook may echo back, keeping newlines and tabs.
func sanitizeText(text string) string {
	text = ansi.Strip(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\n', '\t':
			sb.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// wrapText word-wraps text to the given display width. Words wider than the
// width are split at rune boundaries.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		wrapped = append(wrapped, wrapLine(line, width)...)
	}
	if len(wrapped) == 0 {
		return []string{""}
	}
	return wrapped
}

func wrapLine(line string, width int) []string {
	if line == "" {
		return []string{""}
	}

	var out []string
	var sb strings.Builder
	currentWidth := 0

	for _, word := range strings.Fields(line) {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if sb.Len() > 0 {
				out = append(out, sb.String())
				sb.Reset()
				currentWidth = 0
			}
			parts := splitByWidth(word, width)
			out = append(out, parts[:len(parts)-1]...)
			last := parts[len(parts)-1]
			sb.WriteString(last)
			currentWidth = runewidth.StringWidth(last)
			continue
		}

		sep := 0
		if currentWidth > 0 {
			sep = 1
		}
		if currentWidth+sep+wordWidth > width {
			out = append(out, sb.String())
			sb.Reset()
			currentWidth = 0
			sep = 0
		}
		if sep == 1 {
			sb.WriteString(" ")
			currentWidth++
		}
		sb.WriteString(word)
		currentWidth += wordWidth
	}

	if sb.Len() > 0 || len(out) == 0 {
		out = append(out, sb.String())
	}
	return out
}

func splitByWidth(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	if text == "" {
		return []string{""}
	}

	var parts []string
	var sb strings.Builder
	currentWidth := 0

	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width && currentWidth > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
			currentWidth = 0
		}
		sb.WriteRune(r)
		currentWidth += runeWidth
	}

	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}

	if len(parts) == 0 {
		return []string{""}
	}
	return parts
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return trimToWidth(text, width)
	}
	return trimToWidth(text, width-3) + "..."
}

func trimToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	currentWidth := 0
	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			break
		}
		sb.WriteRune(r)
		currentWidth += runeWidth
	}
	return sb.String()
}
