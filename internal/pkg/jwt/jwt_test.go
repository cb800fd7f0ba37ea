package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestJWTService_GenerateAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h")

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", "company-1", user.RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.NotZero(t, expiresAt)

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "company-1", claims["company_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestJWTService_GenerateAccessToken_InvalidExpiration(t *testing.T) {
	svc := NewJWTService(testSecret, "not-a-duration")

	_, _, err := svc.GenerateAccessToken("user-1", "company-1", user.RoleOwner)
	assert.Error(t, err)
}

func TestJWTService_SystemContext(t *testing.T) {
	svc := NewJWTService(testSecret, "1h")

	ctx, err := svc.SystemContext(context.Background(), "company-42")
	require.NoError(t, err)

	_, claims, err := jwtauth.FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "company-42", claims["company_id"])
	assert.Equal(t, string(user.RoleSystem), claims["role"])
	assert.Equal(t, systemUserID, claims["user_id"])
}
