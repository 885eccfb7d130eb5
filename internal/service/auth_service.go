package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

// PrincipalLookup resolves one credential table to the uniform principal
// shape. Each of the four roles binds its own implementation, which keeps
// table selection out of stringly-typed switches.
type PrincipalLookup func(ctx context.Context, loginID string) (*models.PrincipalRecord, error)

// PasswordUpdate replaces the stored credential hash in one credential table.
type PasswordUpdate func(ctx context.Context, principalID, passwordHash string) error

type authAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for session issuing.
type AuthConfig struct {
	Secret           string
	TokenExpiry      time.Duration
	RememberMeExpiry time.Duration
	Issuer           string
}

// AuthService validates credentials against the role-specific credential
// tables and issues signed, time-bounded session tokens. Sessions are
// stateless: lifetime lives in the token itself and there is no revocation
// list.
type AuthService struct {
	directory map[models.Role]PrincipalLookup
	passwords map[models.Role]PasswordUpdate
	audit     authAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService with the principal directory.
func NewAuthService(directory map[models.Role]PrincipalLookup, passwords map[models.Role]PasswordUpdate, audit authAuditLogger, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{directory: directory, passwords: passwords, audit: audit, validator: validate, logger: logger, config: config}
}

// Login authenticates a principal and returns the issued session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	lookup, ok := s.directory[req.Role]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	record, err := lookup(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid login id or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid login id or password")
	}

	expiry := s.config.TokenExpiry
	if req.RememberMe {
		expiry = s.config.RememberMeExpiry
	}

	token, issuedAt, err := s.generateToken(record, req.Role, expiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	if s.audit != nil {
		role := req.Role
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			PrincipalID: &record.ID,
			Role:        &role,
			Action:      models.AuditActionLogin,
			Resource:    "auth",
			ResourceID:  &record.ID,
			NewValues:   []byte(`{"status":"success"}`),
			IPAddress:   req.IP,
			UserAgent:   req.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record login audit log", zap.Error(err))
		}
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(expiry.Seconds()),
		IssuedAt:  issuedAt,
		Principal: models.PrincipalInfo{
			ID:            record.ID,
			Role:          req.Role,
			DisplayName:   record.DisplayName,
			LoginID:       record.LoginID,
			InstitutionID: record.InstitutionID,
		},
	}, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// ChangePassword verifies the caller's current credential and stores a new
// hash in the role's credential table.
func (s *AuthService) ChangePassword(ctx context.Context, claims *models.SessionClaims, req models.ChangePasswordRequest) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	lookup, ok := s.directory[claims.Role]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	update, ok := s.passwords[claims.Role]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "password change not supported for this role")
	}

	record, err := lookup(ctx, claims.LoginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := update(ctx, record.ID, hash); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change password")
	}

	if s.audit != nil {
		role := claims.Role
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			PrincipalID: &record.ID,
			Role:        &role,
			Action:      models.AuditActionPasswordChange,
			Resource:    "auth",
			ResourceID:  &record.ID,
		}); err != nil {
			s.logger.Warn("failed to record password change audit log", zap.Error(err))
		}
	}
	return nil
}

// HashPassword derives a bcrypt hash for storage. Plaintext credentials are
// never persisted.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) generateToken(record *models.PrincipalRecord, role models.Role, expiry time.Duration) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(expiry)
	claims := &models.SessionClaims{
		PrincipalID:   record.ID,
		Role:          role,
		DisplayName:   record.DisplayName,
		LoginID:       record.LoginID,
		InstitutionID: record.InstitutionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   record.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}
