package async

// Runner dispatches a function for execution. It abstracts the "go func()"
// decision so the wrapper's concurrency can be removed for debugging without
// changing any code path.
type Runner interface {
	Do(fn func())
}

// Background executes each function on a new goroutine. This is the
// production mode.
type Background struct{}

// Do runs fn on a new goroutine.
func (Background) Do(fn func()) {
	go fn()
}

// Inline executes each function on the calling goroutine. Useful in tests and
// for debugging; task completion is then observable immediately after the
// wrapper call returns.
type Inline struct{}

// Do runs fn synchronously.
func (Inline) Do(fn func()) {
	fn()
}
