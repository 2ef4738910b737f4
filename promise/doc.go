// Package promise provides the pending-computation capability consumed by
// the flux lifecycle middleware.
//
// The [Thenable] interface is the whole contract: a value that accepts a
// pair of mutually exclusive continuations and fires exactly one of them
// when the underlying computation settles. [Future] is the canonical
// implementation: a settable, awaitable handle safe for concurrent use.
//
// Bridging an ordinary Go function is one call:
//
//	f := promise.Go(func() (any, error) {
//	    return fetchUser(ctx, userID)
//	})
//	store.Dispatch(&flux.Action{Type: "user/load", Promise: f})
//
// Callers who prefer channels can select on [Future.Done] or block with
// [Future.Await], which honors context cancellation.
package promise
