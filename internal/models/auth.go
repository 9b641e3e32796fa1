package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds the admin credential pair.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse reports the outcome and, on success, the bearer token for
// the dashboard endpoints.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// JWTClaims is the access-token payload.
type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
