package hotkey

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Switch once the Switcher's context is done or
// its listener has gone away.
var ErrStopped = errors.New("hotkey: switcher stopped")

// ListenFunc registers a binding; Listen is the production one.
type ListenFunc func(context.Context, Binding) (<-chan struct{}, error)

// Switcher keeps one binding registered and forwards its presses to a
// single channel, so the binding can change without the consumer noticing.
//
// Presses closes when ctx is done, or when the current registration ends
// by itself.
type Switcher struct {
	ctx    context.Context
	listen ListenFunc
	out    chan struct{}

	mu      sync.Mutex
	cur     Binding
	gen     uint64
	cancel  context.CancelFunc
	stopped bool
}

// NewSwitcher registers b through listen.
func NewSwitcher(ctx context.Context, b Binding, listen ListenFunc) (*Switcher, error) {
	s := &Switcher{ctx: ctx, listen: listen, out: make(chan struct{}, 1)}
	if err := s.register(b); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Switcher) Presses() <-chan struct{} { return s.out }

func (s *Switcher) Binding() Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Switch registers b and then releases the previous binding. If b can't be
// registered the previous one stays active.
func (s *Switcher) Switch(b Binding) error {
	s.mu.Lock()
	same, stopped := b == s.cur, s.stopped
	s.mu.Unlock()
	switch {
	case stopped:
		return ErrStopped
	case same:
		return nil
	}
	return s.register(b)
}

func (s *Switcher) register(b Binding) error {
	lctx, cancel := context.WithCancel(s.ctx)
	ch, err := s.listen(lctx, b)
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancel()
		return ErrStopped
	}
	old, prev := s.cancel, s.cur
	s.gen++
	s.cur, s.cancel = b, cancel
	gen := s.gen
	s.mu.Unlock()

	if old != nil {
		old()
		slog.Info("hotkey switched", "from", prev.String(), "to", b.String())
	}
	go s.forward(gen, ch)
	return nil
}

func (s *Switcher) forward(gen uint64, ch <-chan struct{}) {
	for range ch {
		s.mu.Lock()
		if !s.stopped {
			select {
			case s.out <- struct{}{}:
			default:
			}
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.stopped {
		return // replaced by a newer registration
	}
	s.stopped = true
	s.cancel()
	close(s.out)
}
