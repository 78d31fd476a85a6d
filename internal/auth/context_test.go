package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/domain"
)

func TestUserContext_RoundTrip(t *testing.T) {
	user := &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Priya Sharma",
		Email:       "priya@example.com",
		Roles:       []domain.UserRoleType{domain.RoleSales},
	}

	ctx := auth.WithUserContext(context.Background(), user)
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.UserID, got.UserID)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestUserContext_Roles(t *testing.T) {
	tests := []struct {
		name         string
		roles        []domain.UserRoleType
		isManager    bool
		canWorkLeads bool
	}{
		{"admin", []domain.UserRoleType{domain.RoleAdmin}, true, true},
		{"manager", []domain.UserRoleType{domain.RoleManager}, true, true},
		{"presales", []domain.UserRoleType{domain.RolePresales}, false, true},
		{"sales", []domain.UserRoleType{domain.RoleSales}, false, true},
		{"api service", []domain.UserRoleType{domain.RoleAPIService}, false, true},
		{"no roles", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &auth.UserContext{Roles: tt.roles}
			assert.Equal(t, tt.isManager, u.IsManager())
			assert.Equal(t, tt.canWorkLeads, u.CanWorkLeads())
		})
	}
}

func TestUserContext_HasAnyRole(t *testing.T) {
	u := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleSales}}
	assert.True(t, u.HasAnyRole(domain.RoleManager, domain.RoleSales))
	assert.False(t, u.HasAnyRole(domain.RoleManager, domain.RoleAdmin))
}

func TestUserContext_GetDisplayNameInitials(t *testing.T) {
	assert.Equal(t, "PS", (&auth.UserContext{DisplayName: "Priya Sharma"}).GetDisplayNameInitials())
	assert.Equal(t, "P", (&auth.UserContext{DisplayName: "priya"}).GetDisplayNameInitials())
	assert.Equal(t, "", (&auth.UserContext{}).GetDisplayNameInitials())
}
