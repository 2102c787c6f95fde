package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a single struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is an input error; when Fields is set the API renders a
// per-field message map instead of a single message.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown wraps an error no request can recover from, a lost database
// connection being the usual case. The API error handler triggers a graceful
// server shutdown when it catches one.
type shutdown struct {
	err error
}

func NewShutdownError(err error) error {
	return &shutdown{err: err}
}

func (s shutdown) Error() string {
	return "shutting down: " + s.err.Error()
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
