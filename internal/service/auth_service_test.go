package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "pacs-worklist-api",
	})
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestAuthService()

	token, expiresAt, err := svc.IssueToken(Principal{UserID: "u-1", Role: models.RoleRadiologist, Email: "rad@example.com"})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleRadiologist, claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestIssueTokenRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService()

	_, _, err := svc.IssueToken(Principal{UserID: "u-1", Role: "REFERRING_PHYSICIAN"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestAuthService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.IssueToken(Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	svc := newTestAuthService()

	other := NewAuthService(nil, AuthConfig{AccessTokenSecret: "other", Issuer: "pacs-worklist-api"})
	token, _, err := other.IssueToken(Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	foreign := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	token, _, err = foreign.IssueToken(Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	svc := newTestAuthService()
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
