package errs

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/withstack"
)

// PublicError is an error whose message is safe to return to API consumers.
type PublicError struct {
	err     error
	message string
	status  int // optional HTTP status, zero means 400
}

func (p PublicError) Error() string {
	return p.err.Error()
}

func (p PublicError) Message() string {
	return p.message
}

func (p PublicError) Status() int {
	if p.status == 0 {
		return http.StatusBadRequest
	}
	return p.status
}

func (p PublicError) Unwrap() error {
	return p.err
}

func NewPublicError(message string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message}, 1)
}

// NewPublicErrorWithStatus creates a public error that is rendered with the given HTTP status.
func NewPublicErrorWithStatus(message string, status int) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message, status: status}, 1)
}

func WithPublicMessage(err error, prefix string) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if prefix != "" {
		message = fmt.Sprintf("%s: %s", prefix, message)
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message}, 1)
}
