//go:build !windows

package hotkey

import (
	"context"
	"log/slog"
)

// Listen has no global hotkey to register outside Windows. The returned
// channel never fires and closes when ctx is done.
func Listen(ctx context.Context, b Binding) (<-chan struct{}, error) {
	slog.Warn("global hotkeys are only supported on Windows", "combo", b.String())
	out := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out, nil
}
