// Package async provides a minimal generic task primitive for racing slow
// calls against deadlines.
//
// Run starts a fallible computation in its own goroutine and returns a Task.
// Await blocks until completion, AwaitTimeout bounds the wait and returns
// ErrTimeout when the deadline wins the race. A timed-out task is abandoned,
// not cancelled: the goroutine finishes on its own and its result is never
// observed, so callers that commit shared state after waiting must guard
// against acting on anything produced by an abandoned task.
//
// # Usage
//
//	task := async.Run(ctx, func(ctx context.Context) (*Session, error) {
//	    return provider.CurrentSession(ctx)
//	})
//	sess, err := task.AwaitTimeout(2 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//	    // resolve without the session; a late result is discarded
//	}
package async
