// Package stdio binds ioserverlib channels to the current process's standard
// input and output. It is intended for servers embedded as subprocesses,
// where the parent writes frames to the child's stdin and reads replies from
// its stdout.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 parent
//	Input            : os.Stdin
//	Output           : os.Stdout (frames only)
//	Diagnostics      : os.Stderr, never used for frames
//
// Options allow supplying alternate io.Reader / io.Writer or a custom logger.
//
// Example:
//
//	err := stdio.Serve(ctx, codec.JSON[Message]{}, func(m Message) (Message, bool) {
//	    return handle(m)
//	}, stdio.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
//	if err != nil { log.Fatal(err) }
//
// Channels built here never close the process's own standard streams.
package stdio
