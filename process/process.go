// Package process spawns a child program and exposes its standard input and
// output as one ioserverlib channel. The child is typically a server built
// with package stdio.
//
// The caller owns the returned command: it must close the channel, then call
// Wait (or kill the process). Wait closes the stdout pipe once the child
// exits, so all reads must be done before calling it.
package process

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/krypt0nn/ioserverlib"
	"github.com/krypt0nn/ioserverlib/codec"
)

var errNilCommand = errors.New("nil command")

// Command prepares a command with stderr inherited from the parent so the
// child's diagnostics stay visible. It is not started.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	return cmd
}

// Spawn pipes the child's stdin and stdout, starts cmd and returns it with a
// channel that writes to the child's stdin and reads from its stdout. cmd
// must not have Stdin or Stdout set. A nil Stderr is inherited from the
// parent rather than discarded. Closing the channel closes both pipes, which
// signals end of stream to a stdio server in the child.
func Spawn[M any](cmd *exec.Cmd, c codec.Codec[M], opts ...ioserverlib.Option) (*exec.Cmd, *ioserverlib.Channel[M], error) {
	if cmd == nil {
		return nil, nil, &ioserverlib.SpawnError{Err: errNilCommand}
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, &ioserverlib.SpawnError{Path: cmd.Path, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, nil, &ioserverlib.SpawnError{Path: cmd.Path, Err: err}
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, nil, &ioserverlib.SpawnError{Path: cmd.Path, Err: err}
	}
	if stdin == nil || stdout == nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, nil, &ioserverlib.SpawnError{Path: cmd.Path, Err: ioserverlib.ErrMissingPipe}
	}

	peer := ioserverlib.Peer{Transport: "process", Addr: cmd.Path, PID: cmd.Process.Pid}
	opts = append([]ioserverlib.Option{ioserverlib.WithPeer(peer)}, opts...)
	return cmd, ioserverlib.NewSplit(stdout, stdin, c, opts...), nil
}
