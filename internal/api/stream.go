package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"coderoom/internal/engine"
)

type streamState int

const (
	streamNotStarted streamState = iota
	streamOpen
	streamClosed
)

// eventStream writes server-sent-event frames. Nothing is committed to
// the response until the first frame, so the caller can still fall
// back to a plain JSON error; after that, every outcome (including
// failures) must be expressed as a frame.
type eventStream struct {
	w     http.ResponseWriter
	flush http.Flusher
	state streamState
}

func newEventStream(w http.ResponseWriter) *eventStream {
	flush, _ := w.(http.Flusher)
	return &eventStream{w: w, flush: flush}
}

func (s *eventStream) Started() bool {
	return s.state != streamNotStarted
}

// Emit writes one data: <json> frame, committing the SSE headers on
// the first call.
func (s *eventStream) Emit(payload any) error {
	if s.state == streamClosed {
		return fmt.Errorf("stream closed")
	}
	if s.state == streamNotStarted {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		s.w.WriteHeader(http.StatusOK)
		s.state = streamOpen
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", buf); err != nil {
		return err
	}
	if s.flush != nil {
		s.flush.Flush()
	}
	return nil
}

func (s *eventStream) Close() {
	s.state = streamClosed
}

// relayResult re-packages a completed execution into the stdout /
// stderr / complete frame sequence. Output frames are emitted only
// when non-empty; complete always goes last.
func relayResult(s *eventStream, result *engine.ExecuteResult) error {
	if result.Stdout != "" {
		if err := s.Emit(map[string]any{"type": "stdout", "content": result.Stdout}); err != nil {
			return err
		}
	}
	if result.Stderr != "" {
		if err := s.Emit(map[string]any{"type": "stderr", "content": result.Stderr}); err != nil {
			return err
		}
	}
	return s.Emit(map[string]any{
		"type":     "complete",
		"exitCode": result.ExitCode,
		"time":     result.Time,
		"memory":   result.Memory,
	})
}
