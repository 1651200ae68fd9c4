// Package styles provides a centralized theme for the hookchat UI.
package styles

import (
	"charm.land/lipgloss/v2"
)

// Color palette - ANSI 256 colors used throughout the application
var (
	// Primary accent color (purple)
	ColorAccent = lipgloss.Color("141")

	// Text colors
	ColorText      = lipgloss.Color("252") // Primary text
	ColorTextMuted = lipgloss.Color("245") // Secondary/muted text

	// Semantic colors
	ColorError   = lipgloss.Color("196") // Error messages
	ColorWarning = lipgloss.Color("214") // Streaming/busy indicator
	ColorSuccess = lipgloss.Color("42")  // Success messages

	// Border colors
	ColorBorder = lipgloss.Color("141") // Default border (matches accent)
)

var (
	// TitleStyle for the header line
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// TextStyle for normal text
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// TextMutedStyle for secondary/helper text
	TextMutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// UserStyle for the user message prefix
	UserStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	// AssistantStyle for the assistant message prefix
	AssistantStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// ErrorStyle for error lines in the footer
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	// StreamingStyle for the busy indicator
	StreamingStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// FooterStyle for the key hint line
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// SeparatorStyle for the line between messages and input
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)
)
