package api

import (
	"errors"
	"fmt"
)

// Sentinels for the builder API's failure classes.  Every error returned by
// Client matches exactly one of them under errors.Is.
var (
	// ErrMissingProjection: the site fetch failed or the slug is unknown.
	ErrMissingProjection = errors.New("site projection unavailable")
	// ErrPersistence: a field update was rejected or never arrived.
	ErrPersistence = errors.New("could not save changes")
	// ErrSuggestion: the suggestion call failed or returned nothing usable.
	ErrSuggestion = errors.New("could not fetch suggestions")
	// ErrPageUnavailable: the page fetch failed and no fallback exists.
	ErrPageUnavailable = errors.New("page unavailable")
)

// Error carries the HTTP status of a failed call alongside its class.
type Error struct {
	Kind   error  // one of the sentinels above
	Op     string // "fetch site", "update fields", ...
	Status int    // 0 when the request never got a response
	Detail string // server message or transport error text
	Err    error  // underlying transport error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s: %s: status %d: %s", e.Op, e.Kind, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s: status %d", e.Op, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Is matches the class sentinel.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether err is a 404 from the builder API.
func NotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == 404
}
