package authz

import (
	"context"
	"fmt"
	"slices"
)

// Role names recognised by the policy table. Membership is stored on the
// user's group set; the names are fixed at seed time.
const (
	RoleAuthor    = "author"
	RoleCommenter = "commenter"
	RoleModerator = "moderator"
)

// IdentityType defines request identity types.
type IdentityType int

const (
	// IdentityTypeAnonymous is an unauthenticated request.
	IdentityTypeAnonymous IdentityType = iota
	// IdentityTypeUser is an authenticated user.
	IdentityTypeUser
	// IdentityTypeSystem is an internal operation (seeding, migrations).
	IdentityTypeSystem
)

// String returns string representation of IdentityType.
func (t IdentityType) String() string {
	switch t {
	case IdentityTypeAnonymous:
		return "anonymous"
	case IdentityTypeUser:
		return "user"
	case IdentityTypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Identity represents the actor behind a request.
// Each request carries exactly one Identity, guaranteed by WithIdentity's
// set-once semantics. The zero value is the anonymous identity.
type Identity struct {
	Type     IdentityType
	UserID   uint
	Username string
	Roles    []string
	IsAdmin  bool
}

// Anonymous returns the distinguished unauthenticated identity.
func Anonymous() Identity {
	return Identity{Type: IdentityTypeAnonymous}
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (id Identity) Authenticated() bool {
	return id.Type == IdentityTypeUser
}

// IsSystem reports whether the identity is an internal system actor.
func (id Identity) IsSystem() bool {
	return id.Type == IdentityTypeSystem
}

// HasRole reports whether roleName is in the identity's role set.
// The anonymous identity satisfies no role check.
func (id Identity) HasRole(roleName string) bool {
	if !id.Authenticated() {
		return false
	}

	return slices.Contains(id.Roles, roleName)
}

// Owns reports whether the identity owns a resource whose owner column
// holds ownerID. Resources keep a nullable owner, so callers pass the
// pointer straight through; a null owner matches nobody.
func (id Identity) Owns(ownerID *uint) bool {
	if !id.Authenticated() || ownerID == nil {
		return false
	}

	return *ownerID == id.UserID
}

// String returns string representation of Identity (for audit logs).
func (id Identity) String() string {
	switch id.Type {
	case IdentityTypeAnonymous:
		return "anonymous"
	case IdentityTypeUser:
		return fmt.Sprintf("user:%d", id.UserID)
	case IdentityTypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

func identityEqual(a, b Identity) bool {
	return a.Type == b.Type && a.UserID == b.UserID
}

// identityKey is an unexported key type to prevent external forgery.
type identityKey struct{}

// WithIdentity sets the Identity, returning an error if a different one is
// already present. Ensures each context carries at most one actor.
func WithIdentity(ctx context.Context, id Identity) (context.Context, error) {
	if existing, ok := GetIdentity(ctx); ok {
		if !identityEqual(existing, id) {
			return ctx, fmt.Errorf("authz: identity conflict: existing=%s, new=%s", existing.String(), id.String())
		}

		return ctx, nil // Same identity, idempotent
	}

	return context.WithValue(ctx, identityKey{}, id), nil
}

// GetIdentity reads the Identity from the context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// IdentityFromContext returns the identity in ctx, or the anonymous
// identity when none was set.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := GetIdentity(ctx); ok {
		return id
	}

	return Anonymous()
}

// MustGetIdentity reads the Identity, panicking if absent. Only for call
// chains behind authentication middleware.
func MustGetIdentity(ctx context.Context) Identity {
	id, ok := GetIdentity(ctx)
	if !ok {
		panic("authz: no identity in context")
	}

	return id
}

// NewIdentityContext creates a context carrying a user identity.
func NewIdentityContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// NewSystemContext creates a context carrying the system identity, for
// seeding and other internal operations.
func NewSystemContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{Type: IdentityTypeSystem})
}
