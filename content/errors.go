package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by by-key lookups that match no document.
	ErrNotFound = errors.New("content: not found")
	// ErrStoreUnavailable marks network and authentication failures.
	ErrStoreUnavailable = errors.New("content: store unavailable")
	// ErrStoreQuery matches any *StoreQueryError via errors.Is.
	ErrStoreQuery = errors.New("content: store query error")
)

// StoreQueryError reports a rejected query, bad parameters or a response
// that could not be decoded.
type StoreQueryError struct {
	Query   string
	Status  int
	Message string
	Err     error
}

func (e *StoreQueryError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("content: query %s failed (status %d): %s", e.Query, e.Status, msg)
	}
	return fmt.Sprintf("content: query %s failed: %s", e.Query, msg)
}

// Is makes errors.Is(err, ErrStoreQuery) true.
func (e *StoreQueryError) Is(target error) bool {
	return target == ErrStoreQuery
}

func (e *StoreQueryError) Unwrap() error {
	return e.Err
}
