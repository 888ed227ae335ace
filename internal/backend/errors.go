package backend

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrNotFound        = errors.New("resource not found")
)

// Postgres error codes the API layer cares about.
const (
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
	CodeNotNullViolation    = "23502"
)

// Error is a failed table operation. Code and Message come from the backend.
type Error struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code %s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap turns a driver error into a *Error. pgx.ErrNoRows becomes ErrNotFound
// and nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Op: op, Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return &Error{Op: op, Message: err.Error(), Err: err}
}

// HasCode reports whether err carries the given backend error code.
func HasCode(err error, code string) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == code
}

// UploadError is a failed storage write or public URL resolution.
type UploadError struct {
	Msg string
	Err error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UploadError) Unwrap() error { return e.Err }

// UpdateError wraps any failure inside the multi-step profile update.
type UpdateError struct {
	Err error
}

func (e *UpdateError) Error() string { return "update profile: " + e.Err.Error() }

func (e *UpdateError) Unwrap() error { return e.Err }
