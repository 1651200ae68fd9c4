package ui

import (
	"regexp"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/charmbracelet/x/exp/golden"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestMessageLinesGolden(t *testing.T) {
	streamer := &scriptedStreamer{
		snapshots: []string{
			"It is sunny",
			"It is sunny in Oslo today with a light breeze from the south.",
		},
	}
	m, _ := newTestModel(t, streamer)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 16})
	m = updated.(Model)

	m.textarea.SetValue("What is the weather like today in Oslo?")
	updated, cmd := m.Update(testKeyEnter)
	m = runUpdate(updated.(Model), drainCmd(cmd)[0])

	transcript := stripANSI(strings.Join(m.lines, "\n"))
	golden.RequireEqual(t, []byte(transcript))
}
