// internal/auth/context.go
//
// Authenticated-actor helpers.
//
// The session middleware attaches the dashboard user to the request
// context.  Anything that writes on a tenant's behalf (the field editor's
// save, panel persistence) asks Require for the actor first and refuses to
// talk to the builder API without one.
//
// Usage
// -----
//     // After the session cookie verifies.
//     ctx = auth.WithUser(ctx, 123)
//
//     // Downstream code retrieves the ID.
//     id, err := auth.Require(ctx)   // 123, nil
//
// Notes
// -----
// • Stores an int64 directly in context.  Zero and negative IDs are never
//   valid actors.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"
	"errors"
)

// ErrAuthenticationRequired is returned when a write is attempted without an
// authenticated actor.  No partial write ever follows it.
var ErrAuthenticationRequired = errors.New("authentication required")

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the given userID.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID extracts the userID from ctx.  It returns (0, false) if no user is
// set, if the stored value is not an int64, or if it is not positive.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userKey{}).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// Require is UserID with the error the editor surfaces.
func Require(ctx context.Context) (int64, error) {
	id, ok := UserID(ctx)
	if !ok {
		return 0, ErrAuthenticationRequired
	}
	return id, nil
}
