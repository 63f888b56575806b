package ioserverlib

import (
	"context"
	"sync/atomic"
)

// Daemon is a Server loop running on its own goroutine.
type Daemon struct {
	cancel context.CancelFunc
	done   chan struct{}
	alive  atomic.Bool
	err    error
}

// StartDaemon runs s.Serve on a new goroutine. This is the only place the
// library starts a goroutine; the Server itself stays synchronous.
func StartDaemon[M any](ctx context.Context, s *Server[M]) *Daemon {
	ctx, cancel := context.WithCancel(ctx)
	d := &Daemon{cancel: cancel, done: make(chan struct{})}
	d.alive.Store(true)

	go func() {
		defer close(d.done)
		defer cancel()
		d.err = s.Serve(ctx)
		d.alive.Store(false)
	}()
	return d
}

// Alive reports whether the loop is still running.
func (d *Daemon) Alive() bool { return d.alive.Load() }

// Kill asks the loop to stop before its next cycle. A cycle blocked in Read
// only returns once the channel is closed or receives a frame.
func (d *Daemon) Kill() { d.cancel() }

// Done is closed once the loop has returned.
func (d *Daemon) Done() <-chan struct{} { return d.done }

// Err returns the error Serve ended with. It is only meaningful after Done
// is closed.
func (d *Daemon) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}
