package authz

import (
	"context"
	"testing"
)

func TestIdentityType_String(t *testing.T) {
	tests := []struct {
		name string
		typ  IdentityType
		want string
	}{
		{"anonymous", IdentityTypeAnonymous, "anonymous"},
		{"user", IdentityTypeUser, "user"},
		{"system", IdentityTypeSystem, "system"},
		{"unknown", IdentityType(999), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("IdentityType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentity_HasRole(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		role string
		want bool
	}{
		{"member", Identity{Type: IdentityTypeUser, UserID: 1, Roles: []string{RoleAuthor}}, RoleAuthor, true},
		{"not member", Identity{Type: IdentityTypeUser, UserID: 1, Roles: []string{RoleAuthor}}, RoleModerator, false},
		{"no roles", Identity{Type: IdentityTypeUser, UserID: 1}, RoleCommenter, false},
		{"anonymous never has roles", Identity{Roles: []string{RoleAuthor}}, RoleAuthor, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.HasRole(tt.role); got != tt.want {
				t.Errorf("Identity.HasRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestIdentity_Owns(t *testing.T) {
	owner := uint(7)
	other := uint(8)

	tests := []struct {
		name    string
		id      Identity
		ownerID *uint
		want    bool
	}{
		{"owner", Identity{Type: IdentityTypeUser, UserID: 7}, &owner, true},
		{"not owner", Identity{Type: IdentityTypeUser, UserID: 7}, &other, false},
		{"nil owner matches nobody", Identity{Type: IdentityTypeUser, UserID: 7}, nil, false},
		{"anonymous owns nothing", Anonymous(), &owner, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Owns(tt.ownerID); got != tt.want {
				t.Errorf("Identity.Owns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithIdentity_SetOnce(t *testing.T) {
	ctx := context.Background()

	userA := Identity{Type: IdentityTypeUser, UserID: 1}
	userB := Identity{Type: IdentityTypeUser, UserID: 2}

	ctx, err := WithIdentity(ctx, userA)
	if err != nil {
		t.Fatalf("WithIdentity() unexpected error: %v", err)
	}

	// Same identity is idempotent.
	ctx, err = WithIdentity(ctx, userA)
	if err != nil {
		t.Fatalf("WithIdentity() same identity: unexpected error: %v", err)
	}

	// A different identity must be rejected.
	if _, err = WithIdentity(ctx, userB); err == nil {
		t.Error("WithIdentity() with conflicting identity should fail")
	}

	got, ok := GetIdentity(ctx)
	if !ok || got.UserID != 1 {
		t.Errorf("GetIdentity() = %+v, %v; want userA identity", got, ok)
	}
}

func TestIdentityFromContext_DefaultsToAnonymous(t *testing.T) {
	id := IdentityFromContext(context.Background())
	if id.Authenticated() {
		t.Error("IdentityFromContext() on empty context should be anonymous")
	}

	if id.Type != IdentityTypeAnonymous {
		t.Errorf("IdentityFromContext().Type = %v, want anonymous", id.Type)
	}
}

func TestMustGetIdentity_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustGetIdentity() should panic without identity")
		}
	}()

	MustGetIdentity(context.Background())
}
