package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyVoted = errors.New("already voted")
	ErrPollClosed   = errors.New("poll is closed")
	ErrPollEnded    = errors.New("poll end date has passed")
)

// ValidationError rejects an operation before it touches the db.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return ValidationError{fmt.Sprintf(format, args...)}
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
