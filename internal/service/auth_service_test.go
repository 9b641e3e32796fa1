package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/pkg/config"
)

func newTestAuthService(t *testing.T) *AuthService {
	svc, err := NewAuthService(
		config.AdminConfig{Username: "admin", Password: "s3cret"},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "enquiry-api"},
		nil, nil,
	)
	require.NoError(t, err)
	return svc
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Login successful", result.Message)
	assert.NotEmpty(t, result.Token)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestAuthServiceLoginWrongCredentials(t *testing.T) {
	svc := newTestAuthService(t)

	for name, req := range map[string]models.LoginRequest{
		"wrong password": {Username: "admin", Password: "wrong"},
		"wrong username": {Username: "root", Password: "s3cret"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Invalid credentials")
		})
	}
}

func TestAuthServiceLoginDisabledWithoutPassword(t *testing.T) {
	svc, err := NewAuthService(
		config.AdminConfig{Username: "admin"},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		nil, nil,
	)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "anything"})
	require.Error(t, err)
}

func TestAuthServiceRejectsForeignToken(t *testing.T) {
	svc := newTestAuthService(t)
	other, err := NewAuthService(
		config.AdminConfig{Username: "admin", Password: "s3cret"},
		config.JWTConfig{Secret: "another-secret", Expiration: time.Hour},
		nil, nil,
	)
	require.NoError(t, err)

	result, err := other.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.Token)
	require.Error(t, err)
}
