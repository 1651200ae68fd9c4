// Package ui implements the hookchat terminal interface: a message viewport
// with follow-scrolling above a textarea input, driven by a Conversation.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"hookchat/pkg/chat"
	"hookchat/pkg/ui/styles"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

const (
	inputHeight = 3
	chromeLines = 3 // title + separator + footer

	titleLabel  = "hookchat"
	footerLabel = "Enter Send | Up/Down Scroll | Ctrl+Y Copy | Ctrl+L Clear | Esc Quit"
	busyLabel   = "Streaming... | Esc Stop"

	streamTickInterval = 80 * time.Millisecond
)

// StreamEvent carries a streaming update from the conversation callbacks
// into the Bubble Tea event loop.
type StreamEvent struct {
	Text string
	Err  error
	Done bool
}

type streamEventMsg StreamEvent

// sendDoneMsg is emitted when a blocking send command settles.
type sendDoneMsg struct {
	err error
}

// refreshMsg re-renders the viewport while a response is streaming in.
type refreshMsg struct{}

// Model is the root Bubble Tea model for the chat screen.
type Model struct {
	conv   *chat.Conversation
	events <-chan StreamEvent

	textarea textarea.Model
	width    int
	height   int

	lines     []string
	scrollY   int
	follow    bool
	streaming bool
	status    string
}

// NewModel creates the chat screen bound to a conversation. The events
// channel is optional; when set, conversation callbacks wake the event loop
// as chunks arrive instead of waiting for the next refresh tick.
func NewModel(conv *chat.Conversation, events <-chan StreamEvent) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.SetHeight(inputHeight)
	ta.Focus()

	return Model{
		conv:     conv,
		events:   events,
		textarea: ta,
		follow:   true,
	}
}

// Init starts listening for stream events.
func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(m.width)
		m.refreshView()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case streamEventMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		}
		if msg.Done {
			m.streaming = false
		}
		m.refreshView()
		return m, m.waitForEvent()

	case sendDoneMsg:
		m.streaming = false
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refreshView()
		return m, nil

	case refreshMsg:
		m.refreshView()
		if m.streaming {
			return m, streamTick()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.conv.Stop()
		return m, tea.Quit

	case "esc":
		if m.streaming || m.conv.IsLoading() {
			m.conv.Stop()
			m.streaming = false
			m.refreshView()
			return m, nil
		}
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "up", "down", "pgup", "pgdown":
		m.handleScroll(msg.String())
		return m, nil

	case "ctrl+y":
		return m, m.copyLastReply()

	case "ctrl+l":
		m.conv.Clear()
		m.textarea.Reset()
		m.scrollY = 0
		m.follow = true
		m.streaming = false
		m.status = ""
		m.refreshView()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit sends the textarea content as a user message. Input that trims to
// nothing is ignored, as is Enter while a response is still streaming.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.streaming || m.conv.IsLoading() {
		return m, nil
	}

	content := strings.TrimSpace(m.textarea.Value())
	if content == "" {
		return m, nil
	}

	m.textarea.Reset()
	m.streaming = true
	m.status = ""
	m.follow = true

	conv := m.conv
	send := func() tea.Msg {
		return sendDoneMsg{err: conv.AppendText(context.Background(), content)}
	}
	return m, tea.Batch(send, streamTick())
}

func streamTick() tea.Cmd {
	return tea.Tick(streamTickInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return streamEventMsg(ev)
	}
}

func (m *Model) handleScroll(key string) {
	maxScroll := m.maxScroll()

	switch key {
	case "up":
		if m.scrollY > 0 {
			m.scrollY--
			m.follow = false
		}
	case "down":
		if m.scrollY < maxScroll {
			m.scrollY++
		}
		m.follow = m.scrollY >= maxScroll
	case "pgup":
		m.scrollY -= 10
		if m.scrollY < 0 {
			m.scrollY = 0
		}
		m.follow = false
	case "pgdown":
		m.scrollY += 10
		if m.scrollY > maxScroll {
			m.scrollY = maxScroll
		}
		m.follow = m.scrollY >= maxScroll
	}
}

// copyLastReply copies the most recent non-empty assistant message to the
// clipboard via OSC 52.
func (m Model) copyLastReply() tea.Cmd {
	msgs := m.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != chat.RoleAssistant {
			continue
		}
		text := msgs[i].Text()
		if text == "" {
			continue
		}
		return func() tea.Msg {
			_, _ = fmt.Fprint(os.Stdout, osc52.New(text))
			return nil
		}
	}
	return nil
}

// View renders the chat screen.
func (m Model) View() tea.View {
	if m.width <= 0 || m.height <= 0 {
		return tea.NewView("")
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, styles.TitleStyle.Render(truncateToWidth(titleLabel, m.width)))

	viewportHeight := m.viewportHeight()
	start := m.scrollY
	end := start + viewportHeight
	if end > len(m.lines) {
		end = len(m.lines)
	}
	if start > end {
		start = end
	}
	lines = append(lines, m.lines[start:end]...)
	for len(lines) < 1+viewportHeight {
		lines = append(lines, "")
	}

	lines = append(lines, styles.SeparatorStyle.Render(strings.Repeat("─", m.width)))

	taLines := strings.Split(m.textarea.View(), "\n")
	for i, line := range taLines {
		if i >= inputHeight {
			break
		}
		lines = append(lines, line)
	}
	for len(lines) < 1+viewportHeight+1+inputHeight {
		lines = append(lines, "")
	}

	lines = append(lines, m.footerLine())

	return tea.NewView(strings.Join(lines, "\n"))
}

func (m Model) footerLine() string {
	switch {
	case m.status != "":
		return styles.ErrorStyle.Render(truncateToWidth("Error: "+m.status, m.width))
	case m.streaming:
		return styles.StreamingStyle.Render(truncateToWidth(busyLabel, m.width))
	default:
		return styles.FooterStyle.Render(truncateToWidth(footerLabel, m.width))
	}
}

// refreshView re-renders the wrapped message lines from the conversation.
func (m *Model) refreshView() {
	if m.width <= 0 {
		m.lines = nil
		m.scrollY = 0
		return
	}

	msgs := m.conv.Messages()
	var lines []string
	for i, msg := range msgs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.renderMessage(msg, i == len(msgs)-1)...)
	}
	m.lines = lines

	if m.follow {
		m.scrollY = m.maxScroll()
	}
	if m.scrollY > m.maxScroll() {
		m.scrollY = m.maxScroll()
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
}

func (m *Model) renderMessage(msg chat.Message, last bool) []string {
	prefix := "You: "
	style := styles.UserStyle
	if msg.Role == chat.RoleAssistant {
		prefix = "Assistant: "
		style = styles.AssistantStyle
	}

	body := sanitizeText(msg.Text())
	if body == "" && msg.Role == chat.RoleAssistant && m.streaming && last {
		body = "..."
	}

	wrapped := wrapText(prefix+body, m.width)
	out := make([]string, 0, len(wrapped))
	for i, line := range wrapped {
		if i == 0 && strings.HasPrefix(line, prefix) {
			rest := strings.TrimPrefix(line, prefix)
			out = append(out, style.Render(prefix)+styles.TextStyle.Render(rest))
			continue
		}
		out = append(out, styles.TextStyle.Render(line))
	}
	return out
}

func (m Model) viewportHeight() int {
	h := m.height - inputHeight - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) maxScroll() int {
	max := len(m.lines) - m.viewportHeight()
	if max < 0 {
		return 0
	}
	return max
}
