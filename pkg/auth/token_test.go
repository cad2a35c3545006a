package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/tillworks-backend/pkg/config"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "tillworks",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		Role:     enums.MemberRoleManager,
	}

	signed, err := MintAccessToken(cfg, time.Now(), payload)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, signed)
	require.NoError(t, err)
	require.Equal(t, payload.UserID, claims.UserID)
	require.Equal(t, payload.TenantID, claims.TenantID)
	require.Equal(t, payload.StoreID, claims.StoreID)
	require.Equal(t, payload.Role, claims.Role)
	require.NotEmpty(t, claims.ID)

	acting := claims.Actor()
	require.Equal(t, payload.TenantID, acting.TenantID)
	require.Equal(t, payload.UserID, acting.UserID)
	require.NoError(t, acting.Validate())
}

func TestMintAccessTokenRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	base := AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		Role:     enums.MemberRoleCashier,
	}

	missingRole := base
	missingRole.Role = "owner"
	if _, err := MintAccessToken(cfg, time.Now(), missingRole); err == nil {
		t.Fatal("expected error for unknown role")
	}

	missingUser := base
	missingUser.UserID = uuid.Nil
	if _, err := MintAccessToken(cfg, time.Now(), missingUser); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		Role:     enums.MemberRoleCashier,
	}

	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), payload)
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, signed)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		Role:     enums.MemberRoleAdmin,
	})
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = ParseAccessToken(other, signed)
	require.Error(t, err)
}
