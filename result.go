package storecrawl

// Result carries a value that may have been produced by falling back after
// a failure. A degraded result still holds a usable value (zero pages, an
// empty page) and keeps the reason for logging and inspection.
type Result[T any] struct {
	Value  T
	Reason error
}

// Ok returns a result that did not degrade.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded returns a fallback value together with the failure that caused it.
func Degraded[T any](v T, reason error) Result[T] {
	return Result[T]{Value: v, Reason: reason}
}

// Degraded reports whether the value is a fallback.
func (r Result[T]) Degraded() bool {
	return r.Reason != nil
}
