// Package result provides the typed success/failure outcome returned by every
// fallible flood-monitoring operation.
package result

// Kind classifies why an operation failed.
type Kind int

const (
	// KindAPIRejected means the upstream API answered with a non-200 status
	// or could not be reached at all.
	KindAPIRejected Kind = iota + 1

	// KindMalformedResponse means an expected JSON key was absent or the
	// body could not be decoded.
	KindMalformedResponse

	// KindUnrecognizedMeasure means a parameter or qualifier string has no
	// measure kind mapping.
	KindUnrecognizedMeasure
)

// Explain returns the fixed human-readable explanation for the kind.
func (k Kind) Explain() string {
	switch k {
	case KindAPIRejected:
		return "API rejected request and returned no data"
	case KindMalformedResponse:
		return "API request did not return expected data"
	case KindUnrecognizedMeasure:
		return "could not convert string to a measure kind"
	default:
		return "unknown error"
	}
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAPIRejected:
		return "ApiRejected"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindUnrecognizedMeasure:
		return "UnrecognizedMeasure"
	default:
		return "Unknown"
	}
}

// Error is the failure payload of a Result.
type Error struct {
	Kind Kind

	// Context optionally names the request or field that produced the error.
	Context string
}

// Sentinels for errors.Is matching on kind alone.
var (
	ErrAPIRejected         = &Error{Kind: KindAPIRejected}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
	ErrUnrecognizedMeasure = &Error{Kind: KindUnrecognizedMeasure}
)

// Error returns the kind's explanation without the context; callers append
// the context when logging.
func (e *Error) Error() string {
	return e.Kind.Explain()
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Result holds either a value or an *Error, never both.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok wraps a produced value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err builds a failed result of the given kind.
func Err[T any](kind Kind, context string) Result[T] {
	return Result[T]{err: &Error{Kind: kind, Context: context}}
}

// Fail carries an existing failure into a result of another value type.
func Fail[T any](e *Error) Result[T] {
	if e == nil {
		e = &Error{}
	}
	return Result[T]{err: e}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the value and true for Ok results.
func (r Result[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Failure returns the error and true for Err results.
func (r Result[T]) Failure() (*Error, bool) {
	if r.err == nil {
		return nil, false
	}
	return r.err, true
}

// Unpack converts the result into Go's (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Match calls exactly one of onOk or onErr.
func (r Result[T]) Match(onOk func(T), onErr func(*Error)) {
	if r.err != nil {
		onErr(r.err)
		return
	}
	onOk(r.value)
}

// Map transforms the value of an Ok result and passes failures through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(fn(r.value))
}
