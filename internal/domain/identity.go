// Package domain provides core business types, typed errors, and pricing
// arithmetic for the store.
//
// Context helpers centralize request-scoped identity access so authorization
// decisions are always made against a typed value, never an untyped bag.
package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Role is the authorization role attached to a user account.
type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated actor attached to a request.
// It is resolved once by the auth middleware and passed explicitly into
// every operation that needs authorization.
type Identity struct {
	ID    pgtype.UUID
	Email string
	Role  Role
}

// IsAdmin reports whether the actor has the ADMIN role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// IsStaff reports whether the actor may act on fulfillment (ADMIN or SELLER).
func (id Identity) IsStaff() bool { return id.Role == RoleAdmin || id.Role == RoleSeller }

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const identityContextKey contextKey = iota

// NewContextWithIdentity returns a child context carrying the identity.
func NewContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the authenticated identity from the context.
// The second return value is false when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
