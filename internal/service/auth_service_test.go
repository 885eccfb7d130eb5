package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

func hashForTest(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T) (*AuthService, map[string]string) {
	institutionID := "inst-1"
	records := map[string]*models.PrincipalRecord{
		"42": {
			ID:            "stu-1",
			DisplayName:   "Asha Rao",
			LoginID:       "42",
			PasswordHash:  hashForTest(t, "secret123"),
			InstitutionID: &institutionID,
		},
	}
	updated := map[string]string{}

	directory := map[models.Role]PrincipalLookup{
		models.RoleStudent: func(ctx context.Context, loginID string) (*models.PrincipalRecord, error) {
			record, ok := records[loginID]
			if !ok {
				return nil, sql.ErrNoRows
			}
			return record, nil
		},
	}
	passwords := map[models.Role]PasswordUpdate{
		models.RoleStudent: func(ctx context.Context, principalID, passwordHash string) error {
			updated[principalID] = passwordHash
			return nil
		},
	}

	svc := NewAuthService(directory, passwords, nil, nil, nil, AuthConfig{
		Secret:           "test-secret",
		TokenExpiry:      24 * time.Hour,
		RememberMeExpiry: 168 * time.Hour,
		Issuer:           "cardnest",
	})
	return svc, updated
}

func TestAuthServiceLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Role:     models.RoleStudent,
		LoginID:  "42",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), res.ExpiresIn)
	assert.Equal(t, "stu-1", res.Principal.ID)
	assert.Equal(t, models.RoleStudent, res.Principal.Role)
	require.NotNil(t, res.Principal.InstitutionID)
	assert.Equal(t, "inst-1", *res.Principal.InstitutionID)
}

func TestAuthServiceLoginRememberMeExtendsExpiry(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Role:       models.RoleStudent,
		LoginID:    "42",
		Password:   "secret123",
		RememberMe: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64((168 * time.Hour).Seconds()), res.ExpiresIn)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	cases := []models.LoginRequest{
		{Role: models.RoleStudent, LoginID: "nobody", Password: "secret123"},
		{Role: models.RoleStudent, LoginID: "42", Password: "wrong"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		// Unknown login and wrong password are indistinguishable to the caller.
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	}
}

func TestAuthServiceLoginRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Role:     models.Role("JANITOR"),
		LoginID:  "42",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Role:     models.RoleStudent,
		LoginID:  "42",
		Password: "secret123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", claims.PrincipalID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "42", claims.LoginID)

	other := NewAuthService(nil, nil, nil, nil, nil, AuthConfig{Secret: "other-secret"})
	_, err = other.ValidateToken(res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, updated := newAuthFixture(t)
	claims := &models.SessionClaims{PrincipalID: "stu-1", Role: models.RoleStudent, LoginID: "42"}

	err := svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "brandnew",
	})
	require.NoError(t, err)

	hash, ok := updated["stu-1"]
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("brandnew")))
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	svc, updated := newAuthFixture(t)
	claims := &models.SessionClaims{PrincipalID: "stu-1", Role: models.RoleStudent, LoginID: "42"}

	err := svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "brandnew",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, updated)
}

func TestAuthServiceChangePasswordTooShort(t *testing.T) {
	svc, updated := newAuthFixture(t)
	claims := &models.SessionClaims{PrincipalID: "stu-1", Role: models.RoleStudent, LoginID: "42"}

	err := svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, updated)
}
