package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/pkg/config"
	appErrors "github.com/ace-portal/enquiry-api/pkg/errors"
)

// AuthService authenticates the single configured administrator and issues
// access tokens for the dashboard endpoints. The plaintext password from
// configuration is hashed once at construction and discarded.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtCfg       config.JWTConfig
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAuthService constructs an AuthService from the configured credentials.
func NewAuthService(admin config.AdminConfig, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) (*AuthService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	svc := &AuthService{
		username:  admin.Username,
		jwtCfg:    jwtCfg,
		validator: validate,
		logger:    logger,
	}

	if admin.Password == "" {
		logger.Warn("admin password not configured, login is disabled")
		return svc, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	svc.passwordHash = hash
	return svc, nil
}

// Login checks the credential pair and returns a signed access token. Both
// failure modes produce the same response so the caller cannot probe for
// valid usernames.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	if s.passwordHash == nil || req.Username != s.username {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := s.generateToken(req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("admin login", zap.String("username", req.Username))

	return &models.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateToken(username string) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.jwtCfg.Issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.jwtCfg.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}
