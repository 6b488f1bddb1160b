package chat

import (
	"errors"
	"io"
	"net/http"
	"sync"
)

// ErrSinkClosed is returned by WriteEvent after the sink reached its
// terminal closed state.
var ErrSinkClosed = errors.New("sink closed")

// EventSink is the write-only handle for one user's open live-update
// stream. The registry holds the only reference entitled to write or
// close it.
type EventSink interface {
	// WriteEvent encodes and writes a single event frame. Writes on one
	// sink are serialized; returns ErrSinkClosed after Close.
	WriteEvent(ev Event) error
	// Close transitions the sink to its terminal state. Idempotent.
	Close() error
}

// streamSink writes SSE frames to an http response. The internal mutex is
// the single-writer boundary for the connection: heartbeat writes and
// dispatcher writes may race, but frames never interleave.
type streamSink struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
	// onClose wakes the owning stream handler so a replaced or evicted
	// connection tears down promptly instead of idling until heartbeat.
	onClose func()
}

// NewStreamSink wraps a response writer into an EventSink. onClose may be
// nil; when set it runs exactly once, on the first Close.
func NewStreamSink(w io.Writer, flusher http.Flusher, onClose func()) EventSink {
	return &streamSink{w: w, flusher: flusher, onClose: onClose}
}

func (s *streamSink) WriteEvent(ev Event) error {
	frame, err := ev.Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

func (s *streamSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return nil
}
