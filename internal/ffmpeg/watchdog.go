package ffmpeg

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var errDeadline = errors.New("deadline exceeded")

const (
	watchPending int32 = iota
	watchStopped
	watchFired
)

// watchdog kills a process when ctx is cancelled or timeout elapses before
// stop is called.
type watchdog struct {
	ctx     context.Context
	stopCtx func() bool
	timer   *time.Timer
	state   atomic.Int32
}

func watch(ctx context.Context, proc Process, timeout time.Duration) *watchdog {
	w := &watchdog{ctx: ctx}
	w.stopCtx = context.AfterFunc(ctx, func() { _ = proc.Kill() })
	if timeout > 0 {
		w.timer = time.AfterFunc(timeout, func() {
			if w.state.CompareAndSwap(watchPending, watchFired) {
				_ = proc.Kill()
			}
		})
	}
	return w
}

// stop disarms the watchdog. It returns the context error or errDeadline
// when the process was killed before stop ran. The kill may land after the
// guarded operation already finished, so callers weigh errDeadline against
// their own I/O result.
func (w *watchdog) stop() error {
	cancelled := !w.stopCtx()
	if w.timer != nil {
		w.timer.Stop()
	}
	if cancelled {
		return w.ctx.Err()
	}
	if !w.state.CompareAndSwap(watchPending, watchStopped) {
		return errDeadline
	}
	return nil
}
