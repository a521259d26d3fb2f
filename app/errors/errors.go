package errors

// WithCause is implemented by errors that wrap an underlying error.
type WithCause interface{ Cause() error }

// WithHint is implemented by errors that carry a suggestion for the user.
type WithHint interface{ Hint() string }

// Runtime is an error reported to the user, with an optional cause and hint
// on how to resolve it.
type Runtime struct {
	msg   string
	cause error
	hint  string
}

func NewRuntimeError(msg string, cause error, hint string) Runtime {
	return Runtime{msg: msg, cause: cause, hint: hint}
}

func (e Runtime) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e Runtime) Cause() error {
	return e.cause
}

func (e Runtime) Unwrap() error {
	return e.cause
}

func (e Runtime) Hint() string {
	return e.hint
}
