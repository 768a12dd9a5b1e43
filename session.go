package md2card

import (
	"context"
	"sync"
	"sync/atomic"
)

// Renderer converts one input into a deck. *Converter implements it.
type Renderer interface {
	Convert(ctx context.Context, input Input) (*ConvertResult, error)
}

var _ Renderer = (*Converter)(nil)

// Session keeps the latest rendered deck of a live preview.
//
// Each Render takes a generation number when it starts. A render commits its
// result only if no render that started later has already committed, so a
// slow stale render never replaces newer content. In-flight renders are not
// cancelled.
type Session struct {
	renderer Renderer
	next     atomic.Uint64

	mu        sync.RWMutex
	committed uint64
	current   *ConvertResult
}

// NewSession creates a Session rendering through r.
func NewSession(r Renderer) *Session {
	return &Session{renderer: r}
}

// Render converts input and commits the result unless it is stale.
// committed reports whether the result became the current one. A failed
// render never changes the current result.
func (s *Session) Render(ctx context.Context, input Input) (res *ConvertResult, committed bool, err error) {
	gen := s.next.Add(1)

	res, err = s.renderer.Convert(ctx, input)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.committed {
		return res, false, nil
	}
	s.committed = gen
	s.current = res
	return res, true, nil
}

// Current returns the committed result and its generation.
// The result is nil and the generation 0 before the first commit.
func (s *Session) Current() (*ConvertResult, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.committed
}
