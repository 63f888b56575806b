// Package ioserverlib builds message-oriented client/server pairs on top of
// plain byte streams: standard input/output, unix domain sockets, a child
// process's pipes, or any io.Reader and io.Writer.
//
// The package has three layers:
//
//	codec.Codec[M]  : turns one message into one newline-free payload and back
//	Channel[M]      : owns a stream and a codec, reads and writes whole messages
//	Server[M]       : one read, handle, optional reply cycle per Update call
//
// Frames are delimited by a single '\n'. With codec.JSON the wire format is
// one compact JSON value per line.
//
// Server side, over the process's stdio (see package stdio):
//
//	ch := stdio.NewChannel(codec.JSON[string]{})
//	srv := ioserverlib.NewServer(ch, func(m string) (string, bool) {
//	    if m == "ping" {
//	        return "pong", true
//	    }
//	    return "", false
//	})
//	for {
//	    err := srv.Update()
//	    if err == nil {
//	        continue
//	    }
//	    var ioErr *ioserverlib.IOError
//	    if errors.As(err, &ioErr) {
//	        break // end of stream or a broken pipe
//	    }
//	    // stdout carries frames; report on stderr.
//	    fmt.Fprintln(os.Stderr, "server error:", err)
//	}
//
// Server.Serve runs the same loop with a context and a configurable stop
// policy.
//
// Client side, spawning the server binary (see package process):
//
//	cmd, ch, err := process.Spawn(exec.Command("path/to/server"), codec.JSON[string]{})
//	if err != nil { log.Fatal(err) }
//	defer cmd.Wait()
//	defer ch.Close()
//	_ = ch.Write("ping")
//	reply, err := ch.Read()
//
// Everything is synchronous. A Channel belongs to one goroutine, a blocked
// Read returns only when a frame arrives or the stream closes, and no error
// is retried or swallowed: callers distinguish *DecodeError, *EncodeError,
// *IOError and *SpawnError with errors.As and decide what is fatal.
package ioserverlib
