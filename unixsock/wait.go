package unixsock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/krypt0nn/ioserverlib"
	"github.com/krypt0nn/ioserverlib/codec"
)

var errWatcherClosed = errors.New("unixsock: watcher closed")

const (
	minRedialDelay = 5 * time.Millisecond
	maxRedialDelay = 200 * time.Millisecond
)

// WaitForSocket blocks until a file exists at path or ctx is done. It watches
// the parent directory instead of polling, so the directory must exist.
//
// The file appears when the server binds, which is before it listens, so a
// Dial right after WaitForSocket can still be refused. DialWhenReady covers
// that window.
func WaitForSocket(ctx context.Context, path string) error {
	if exists(path) {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unixsock: watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("unixsock: watch %s: %w", filepath.Dir(path), err)
	}
	// The file may have appeared between the first check and Add.
	if exists(path) {
		return nil
	}

	name := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return errWatcherClosed
			}
			if filepath.Base(ev.Name) == name && ev.Has(fsnotify.Create) {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errWatcherClosed
			}
			return fmt.Errorf("unixsock: watch: %w", err)
		}
	}
}

// DialWhenReady waits for the socket at path to appear and dials it, retrying
// refused connections until ctx is done.
func DialWhenReady[M any](ctx context.Context, path string, c codec.Codec[M], opts ...ioserverlib.Option) (*ioserverlib.Channel[M], error) {
	if err := WaitForSocket(ctx, path); err != nil {
		return nil, err
	}

	delay := minRedialDelay
	for {
		ch, err := Dial(ctx, path, c, opts...)
		if err == nil {
			return ch, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("unixsock: dial %s: %w", path, errors.Join(ctx.Err(), err))
		}
		if !retryableDial(err) {
			return nil, err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("unixsock: dial %s: %w", path, errors.Join(ctx.Err(), err))
		case <-t.C:
		}
		delay = min(delay*2, maxRedialDelay)
	}
}

// retryableDial reports whether err comes from a socket that is bound but
// not yet listening, or one replaced between the wait and the dial.
func retryableDial(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, fs.ErrNotExist)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
