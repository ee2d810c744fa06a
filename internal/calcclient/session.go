package calcclient

import (
	"context"
	"errors"
	"sync"

	"github.com/iwvelando/valuecalc/internal/assembler"
	"go.uber.org/atomic"
)

// ErrStale is returned by Session.Calculate when a newer request was issued
// before this one finished.
var ErrStale = errors.New("calcclient: superseded by a newer request")

// Session serializes calculations for one view. Starting a calculation
// cancels the one in flight, and a response that arrives after a newer
// request started is discarded.
type Session struct {
	client *Client
	seq    atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSession wraps client.
func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// Calculate issues payload as the newest request of the session.
func (s *Session) Calculate(ctx context.Context, payload *assembler.Payload) (Results, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	id := s.seq.Inc()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	results, err := s.client.Calculate(reqCtx, payload)
	if s.seq.Load() != id {
		return nil, ErrStale
	}
	return results, err
}

// Latest returns the id of the most recent request.
func (s *Session) Latest() uint64 {
	return s.seq.Load()
}

// Cancel aborts the request in flight, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
