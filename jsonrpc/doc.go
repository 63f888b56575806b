// Package jsonrpc provides a ready-made JSON-RPC 2.0 message type for
// ioserverlib channels, a Mux that turns method handlers into a server
// Handler, and a synchronous Client.
//
// Requests receive exactly one response. Notifications (requests without an
// id) never do, which maps onto the server's no-reply case. Responses that
// arrive at a server are ignored.
//
//	mux := jsonrpc.NewMux()
//	mux.HandleMethod("echo", func(params json.RawMessage) (any, error) {
//	    return params, nil
//	})
//	err := stdio.Serve(ctx, jsonrpc.Codec(), mux.Handle)
package jsonrpc
