// Package async provides coordination primitives for long-running
// operations: retry with backoff, timeout races, cooperative cancellation,
// manually settled slots, sequencing and bounded fan-out.
//
// Every primitive consumes Operation values and reports a result.Result.
// Failures are values: operation errors pass through unchanged, the package
// synthesizes only ErrTimeout, ErrCanceled, ErrNoAttempts, ErrInvalidLimit,
// ErrAbandoned and *PanicError, and no panic from an operation escapes a primitive.
//
// # Primitives
//
//   - ComputeDelay: exponential backoff with an optional [0.75, 1.25] jitter
//     factor, capped at MaxDelay.
//
//   - Retry: repeats a failing operation up to MaxAttempts times and returns
//     the last failure verbatim.
//
//   - WithTimeout: races an operation against a timer.
//
//   - MakeCancelable: redirects an operation's reported outcome to
//     ErrCanceled when canceled first.
//
//   - Deferred: a settle-once slot resolved or rejected by the caller.
//
//   - Sequence: strict ordering, fail-fast.
//
//   - Parallel: at most N operations in flight, results in input order,
//     failures captured per slot.
//
//   - Coalescer: one in-flight operation per key.
//
// # Usage
//
//	fetch := async.FromFunc(func(ctx context.Context) (*Page, error) {
//	    return client.Get(ctx, url)
//	})
//
//	// Bound every attempt to 2s and retry up to 5 times.
//	cfg := async.DefaultRetryConfig()
//	cfg.MaxAttempts = 5
//	page, err := async.Retry(ctx, async.Timeout(fetch, 2*time.Second), cfg).Get()
//
//	// Fetch many pages, four at a time.
//	slots, err := async.Parallel(ctx, ops, 4).Get()
//	pages, err := result.Collect(slots).Get()
//
// # Cancellation
//
// Cancellation is cooperative. WithTimeout and MakeCancelable cancel the
// operation's context when they stop observing it, but they cannot stop an
// operation that ignores its context: the goroutine running it stays alive
// until the operation returns. Callers wrapping work that never honors ctx
// accept that leak.
//
// # Time
//
// Sleeps and timers go through a clockwork.Clock (WithClock) and jitter
// through a JitterSource (WithJitter), so tests can run on a fake clock with
// deterministic delays.
package async
