package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Minute,
		Issuer:            "insights",
		Audience:          []string{"insights-api"},
	})
}

func TestAuthServiceValidateIssuedToken(t *testing.T) {
	svc := newTestAuthService()

	token, expiresAt, err := svc.IssueToken("admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService()
	token, _, err := svc.IssueToken("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "other", Issuer: "insights", Audience: []string{"insights-api"}})
	token, _, err := issuer.IssueToken("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceRejectsForeignIssuer(t *testing.T) {
	issuer := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", Issuer: "elsewhere", Audience: []string{"insights-api"}})
	token, _, err := issuer.IssueToken("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	require.Error(t, err)
}

func TestAuthServiceRejectsUnexpectedAlgorithm(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "insights",
		Audience:  []string{"insights-api"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	require.Error(t, err)
}

func TestAuthServiceRejectsMissingRole(t *testing.T) {
	svc := newTestAuthService()
	token, _, err := svc.IssueToken("admin-1", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService()
	token, _, err := svc.IssueToken("student-1", models.UserRole("STUDENT"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
