// Package sweep removes old clipboard images from the temp directory, on a
// cron schedule while running and all at once on exit.
package sweep

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule and DefaultMaxAge match the two-hour cleanup interval.
const (
	DefaultSchedule = "@every 2h"
	DefaultMaxAge   = 2 * time.Hour
)

type Sweeper struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

func New(dir string, maxAge time.Duration) *Sweeper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Sweeper{dir: dir, maxAge: maxAge, now: time.Now}
}

// Sweep deletes PNG files last modified more than maxAge ago and returns
// how many it removed. A missing directory is not an error.
func (s *Sweeper) Sweep() (int, error) {
	cutoff := s.now().Add(-s.maxAge)
	return s.remove("sweep", func(info os.FileInfo) bool {
		return info.ModTime().Before(cutoff)
	})
}

// Purge deletes every PNG file in the directory.
func (s *Sweeper) Purge() (int, error) {
	return s.remove("purge", func(os.FileInfo) bool { return true })
}

func (s *Sweeper) remove(op string, match func(os.FileInfo) bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: reading %s: %w", op, s.dir, err)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil || !match(info) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("removing temp file failed", "op", op, "path", path, "err", err)
			continue
		}
		slog.Debug("temp file removed", "op", op, "path", path)
		n++
	}
	return n, nil
}

/*──────── scheduling ──────────────────────────────────────────*/

// NewCron returns a scheduler that logs through slog, recovers panicking
// jobs and never overlaps runs of the same job.
func NewCron() *cron.Cron {
	l := cronLogger{}
	return cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}

// Schedule registers a periodic Sweep on c.
func (s *Sweeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		n, err := s.Sweep()
		if err != nil {
			slog.Warn("temp sweep failed", "err", err)
			return
		}
		if n > 0 {
			slog.Info("temp sweep", "removed", n, "dir", s.dir)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("sweep schedule %q: %w", spec, err)
	}
	return id, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	slog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	slog.Error("cron: "+msg, append(kv, "err", err)...)
}
