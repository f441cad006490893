package systemuser

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/config"
)

func TestCredentialFor(t *testing.T) {
	provider := NewProvider(config.SystemUser{
		Username:   "consortia-system-user",
		SigningKey: "test-key",
		TokenTTL:   10 * time.Minute,
	})

	cred, err := provider.CredentialFor("mobius")
	require.NoError(t, err)
	assert.Equal(t, "mobius", cred.TenantID)

	token, err := jwt.Parse(cred.Token, func(*jwt.Token) (any, error) {
		return []byte("test-key"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "consortia-system-user", claims["sub"])
	assert.Equal(t, "mobius", claims["tenant"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), exp.Time, time.Minute)
}
