package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	readChunkSize    = 4096
	errorBodyExcerpt = 200
)

// HTTPStreamer posts JSON to a webhook and reports download progress as the
// response body streams in. Every progress tick carries the whole body read
// so far, not a delta.
type HTTPStreamer struct {
	client *http.Client
}

// NewHTTPStreamer creates a streamer using the given client. A nil client
// means no timeout; streamed responses can legitimately run long.
func NewHTTPStreamer(client *http.Client) *HTTPStreamer {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPStreamer{client: client}
}

// Start issues the POST and begins reading the body in the background.
func (s *HTTPStreamer) Start(ctx context.Context, req Request, onProgress ProgressFunc) (*Handle, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("request url is required")
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	slog.Debug("webhook_request_start",
		"url", req.URL,
		"request_size", len(body),
	)

	h := NewHandle(cancel)
	go s.run(httpReq, h, onProgress)
	return h, nil
}

func (s *HTTPStreamer) run(req *http.Request, h *Handle, onProgress ProgressFunc) {
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("webhook_request_error", "error", err)
		h.Settle(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyExcerpt))
		slog.Debug("webhook_request_status_error",
			"status_code", resp.StatusCode,
			"body_preview", string(excerpt),
		)
		h.Settle(fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(excerpt)))
		return
	}

	var buf strings.Builder
	chunk := make([]byte, readChunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if onProgress != nil {
				if err := onProgress(buf.String()); err != nil {
					h.Settle(err)
					return
				}
			}
		}
		if readErr == io.EOF {
			slog.Debug("webhook_request_done", "response_size", buf.Len())
			h.Settle(nil)
			return
		}
		if readErr != nil {
			slog.Debug("webhook_read_error", "error", readErr)
			h.Settle(readErr)
			return
		}
	}
}

var _ Streamer = (*HTTPStreamer)(nil)
