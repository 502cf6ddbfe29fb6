// Package saver writes encoded images to disk off the interactive path.
// Producers hand jobs to a bounded queue; one goroutine writes them in
// order. Write failures are logged and dropped.
package saver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
)

// DefaultQueueSize is the job queue capacity.
const DefaultQueueSize = 64

var ErrClosed = errors.New("saver: closed")

// Job is one file to write.
type Job struct {
	Path string
	Data []byte
}

// Saver owns the job queue and its writer.
type Saver struct {
	fs   FS
	ch   chan Job
	stop chan struct{}
	once sync.Once

	// mu orders Submit against Close so nothing is sent on a closed channel.
	mu     sync.RWMutex
	closed bool
}

// New returns a Saver with a queue of size jobs. A nil fs writes to disk.
func New(fs FS, size int) *Saver {
	if fs == nil {
		fs = OSFS{}
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Saver{
		fs:   fs,
		ch:   make(chan Job, size),
		stop: make(chan struct{}),
	}
}

// Submit queues j, blocking while the queue is full.
func (s *Saver) Submit(ctx context.Context, j Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.ch <- j:
		return nil
	case <-s.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake. Run writes whatever is still queued and returns.
func (s *Saver) Close() {
	s.once.Do(func() {
		close(s.stop) // wakes Submit calls blocked on a full queue
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// Run is the single writer. It returns when the saver is closed and the
// queue is drained, or when ctx is done.
func (s *Saver) Run(ctx context.Context) {
	for {
		select {
		case j, ok := <-s.ch:
			if !ok {
				return
			}
			s.write(j)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Saver) write(j Job) {
	if err := s.save(j); err != nil {
		slog.Warn("saving image failed", "path", j.Path, "err", err)
		return
	}
	slog.Info("image saved", "path", j.Path, "bytes", len(j.Data))
}

func (s *Saver) save(j Job) error {
	if dir := filepath.Dir(j.Path); dir != "" {
		if err := s.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := s.fs.WriteFile(j.Path, j.Data); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}
