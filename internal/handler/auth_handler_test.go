package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/internal/service"
	"github.com/ace-portal/enquiry-api/pkg/config"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	svc, err := service.NewAuthService(
		config.AdminConfig{Username: "admin", Password: "s3cret"},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "enquiry-api"},
		nil, nil,
	)
	require.NoError(t, err)
	return NewAuthHandler(svc)
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t)

	payload, _ := json.Marshal(models.LoginRequest{Username: "admin", Password: "s3cret"})
	c, w := newGinContext(http.MethodPost, "/api/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t)

	payload, _ := json.Marshal(models.LoginRequest{Username: "admin", Password: "wrong"})
	c, w := newGinContext(http.MethodPost, "/api/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Message)
	assert.Empty(t, resp.Token)
}

func TestAuthHandlerLoginMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t)

	payload, _ := json.Marshal(models.LoginRequest{Username: "admin"})
	c, w := newGinContext(http.MethodPost, "/api/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
