// Package unixsock binds ioserverlib channels to unix domain stream sockets.
// Framing is identical to the stdio transport: one frame per line, the same
// socket descriptor serving both directions.
//
// A server listens and accepts one channel per connection:
//
//	l, err := unixsock.Listen("/run/app.sock")
//	...
//	for {
//	    ch, err := unixsock.Accept(l, codec.JSON[Message]{})
//	    if err != nil { break }
//	    go ioserverlib.NewServer(ch, handle).Serve(ctx)
//	}
//
// A client dials, optionally waiting for the server to create the socket:
//
//	if err := unixsock.WaitForSocket(ctx, "/run/app.sock"); err != nil { ... }
//	ch, err := unixsock.Dial(ctx, "/run/app.sock", codec.JSON[Message]{})
package unixsock
