package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"hookchat/pkg/chat"
	"hookchat/pkg/chat/transport"
	"hookchat/pkg/config"
	"hookchat/pkg/logging"
	"hookchat/pkg/ui"
	"hookchat/pkg/version"

	tea "charm.land/bubbletea/v2"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", config.GetConfigPath(), "path to the config file")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hookchat %s %s\n", version.Summary(), version.Platform())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config at %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file. A failure here still
	// leaves a usable chat, just without logs.
	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	slog.Info("hookchat_start",
		"version", version.Summary(),
		"platform", version.Platform(),
		"mode", cfg.Webhook.Mode,
		"breaker_enabled", cfg.Breaker.Enabled,
	)

	client := &http.Client{}
	if cfg.Webhook.APITimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.Webhook.APITimeoutSeconds) * time.Second
	}

	var streamer transport.Streamer = transport.NewHTTPStreamer(client)
	if cfg.Breaker.Enabled {
		streamer = transport.NewBreakerStreamer(streamer, transport.BreakerConfig{
			MaxFailures: cfg.Breaker.MaxFailures,
			Timeout:     time.Duration(cfg.Breaker.TimeoutSeconds) * time.Second,
			Interval:    time.Duration(cfg.Breaker.IntervalSeconds) * time.Second,
		})
	}

	events := make(chan ui.StreamEvent, 64)
	conv := chat.NewConversation(chat.Options{
		Endpoint:  cfg.Webhook.Endpoint,
		Headers:   cfg.Webhook.Headers,
		Mode:      chat.Mode(cfg.Webhook.Mode),
		ExtraBody: cfg.Webhook.ExtraBody,
		Transport: streamer,
		OnChunk: func(text string) {
			pushEvent(events, ui.StreamEvent{Text: text})
		},
		OnFinish: func(msg chat.Message) {
			pushEvent(events, ui.StreamEvent{Text: msg.Text(), Done: true})
		},
		OnError: func(err error) {
			pushEvent(events, ui.StreamEvent{Err: err, Done: true})
		},
	})

	if _, err := tea.NewProgram(ui.NewModel(conv, events)).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running UI: %v\n", err)
		os.Exit(1)
	}
}

// pushEvent drops the event when the UI is not draining fast enough rather
// than blocking the transport goroutine. The UI re-reads the conversation on
// every event, so a dropped chunk only delays the repaint.
func pushEvent(ch chan<- ui.StreamEvent, ev ui.StreamEvent) {
	select {
	case ch <- ev:
	default:
	}
}
