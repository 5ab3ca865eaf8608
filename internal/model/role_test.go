package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	got, err := ParseRole("ANALYST")
	require.NoError(t, err)
	assert.Equal(t, RoleAnalyst, got)

	// Case and whitespace are normalized before matching.
	got, err = ParseRole("  manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, got)
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	// An unknown title must fail loudly, never default to any role.
	for _, in := range []string{"", "CEO", "ADMIN", "engineer"} {
		_, err := ParseRole(in)
		assert.Error(t, err, in)
	}
}

func TestAccessKeyExhausted(t *testing.T) {
	one := uint32(1)
	k := AccessKey{Type: KeySingleUse, MaxUses: &one}
	assert.False(t, k.Exhausted())
	k.UseCount = 1
	assert.True(t, k.Exhausted())

	// No cap means never exhausted.
	assert.False(t, AccessKey{Type: KeyPermanent, UseCount: 999}.Exhausted())
}

func TestAccessKeyExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, AccessKey{Type: KeyExpiring, ExpiresAt: &past}.ExpiredAt(now))
	assert.False(t, AccessKey{Type: KeyExpiring, ExpiresAt: &future}.ExpiredAt(now))
	// Only EXPIRING keys carry an expiry.
	assert.False(t, AccessKey{Type: KeyPermanent, ExpiresAt: &past}.ExpiredAt(now))
}

func TestPublicViewOmitsCredentials(t *testing.T) {
	u := User{
		ID:           7,
		Username:     "ana",
		Email:        "ana@example.com",
		Role:         RoleDirector,
		Permission:   PermissionAdministrator,
		PasswordHash: "$2a$10$secret",
		Status:       UserActive,
	}
	pub := u.Public()
	assert.Equal(t, uint64(7), pub.ID)
	assert.Equal(t, "ADMINISTRATOR", pub.Permission)
	// PublicUser has no hash or recovery fields at all; spot-check the
	// JSON surface stays credential-free by construction.
	assert.NotContains(t, []any{pub.Username, pub.Email}, u.PasswordHash)
}
