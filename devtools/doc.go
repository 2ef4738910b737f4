// Package devtools provides live inspection of store dispatches.
//
// A [Recorder] installs as ordinary middleware and keeps the most recent
// actions (type, lifecycle stage, transaction, and a MessagePack
// snapshot of the payload) in a ring buffer. A [Server] streams every
// recorded entry to WebSocket subscribers as binary MessagePack frames,
// so external tooling can follow an operation's start/success/failure
// sequence by its transaction ID.
//
//	rec := devtools.NewRecorder()
//	store, err := flux.New(reducer, initial,
//	    flux.WithMiddleware[S](rec.Middleware(), middleware.Lifecycle()),
//	)
//
//	srv := devtools.NewServer(rec, devtools.WithAddr("127.0.0.1:7311"))
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Close()
//
// The recorder never disturbs dispatch: unencodable payloads are
// omitted from the entry, and watchers that fall behind drop entries
// instead of blocking.
package devtools
