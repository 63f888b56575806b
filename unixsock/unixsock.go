package unixsock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/krypt0nn/ioserverlib"
	"github.com/krypt0nn/ioserverlib/codec"
)

const network = "unix"

// NewChannel wraps an already connected socket. Closing the channel closes
// conn.
func NewChannel[M any](conn net.Conn, c codec.Codec[M], opts ...ioserverlib.Option) *ioserverlib.Channel[M] {
	peer := ioserverlib.Peer{Transport: "unix", Addr: addrString(conn.RemoteAddr()), PID: peerPID(conn)}
	if peer.Addr == "" {
		// Accepted connections usually have an unnamed remote end.
		peer.Addr = addrString(conn.LocalAddr())
	}
	opts = append([]ioserverlib.Option{ioserverlib.WithPeer(peer)}, opts...)
	return ioserverlib.New(conn, c, opts...)
}

// Dial connects to the socket at path and wraps the connection.
func Dial[M any](ctx context.Context, path string, c codec.Codec[M], opts ...ioserverlib.Option) (*ioserverlib.Channel[M], error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, path)
	if err != nil {
		return nil, &ioserverlib.IOError{Op: "dial", Err: err}
	}
	return NewChannel(conn, c, opts...), nil
}

// Listener accepts socket connections. The socket file is removed on Close.
type Listener struct {
	l    *net.UnixListener
	path string
}

// Listen binds a socket at path. A stale socket file left by a previous
// process is removed first; any other existing file is an error.
func Listen(path string) (*Listener, error) {
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}
	addr := &net.UnixAddr{Name: path, Net: network}
	l, err := net.ListenUnix(network, addr)
	if err != nil {
		return nil, &ioserverlib.IOError{Op: "listen", Err: err}
	}
	l.SetUnlinkOnClose(true)
	return &Listener{l: l, path: path}, nil
}

// Accept waits for the next connection on l and wraps it.
func Accept[M any](l *Listener, c codec.Codec[M], opts ...ioserverlib.Option) (*ioserverlib.Channel[M], error) {
	conn, err := l.l.AcceptUnix()
	if err != nil {
		return nil, &ioserverlib.IOError{Op: "accept", Err: err}
	}
	return NewChannel(conn, c, opts...), nil
}

// Path returns the socket file path.
func (l *Listener) Path() string { return l.path }

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr { return l.l.Addr() }

// Close stops accepting and removes the socket file.
func (l *Listener) Close() error { return l.l.Close() }

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	if s := a.String(); s != "<nil>" {
		return s
	}
	return ""
}

func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat socket: %w", err)
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("listen %s: file exists and is not a socket", path)
	}
	if conn, err := net.Dial(network, path); err == nil {
		_ = conn.Close()
		return fmt.Errorf("listen %s: socket is in use", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}
