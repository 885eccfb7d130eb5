package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardnest/cardnest-api/internal/middleware"
	"github.com/cardnest/cardnest-api/internal/models"
	"github.com/cardnest/cardnest-api/internal/service"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	institutionID := "inst-1"
	directory := map[models.Role]service.PrincipalLookup{
		models.RoleStudent: func(ctx context.Context, loginID string) (*models.PrincipalRecord, error) {
			if loginID != "42" {
				return nil, sql.ErrNoRows
			}
			return &models.PrincipalRecord{
				ID:            "stu-1",
				DisplayName:   "Asha Rao",
				LoginID:       "42",
				PasswordHash:  string(hash),
				InstitutionID: &institutionID,
			}, nil
		},
	}
	authService := service.NewAuthService(directory, nil, nil, nil, nil, service.AuthConfig{
		Secret:           "test-secret",
		TokenExpiry:      24 * time.Hour,
		RememberMeExpiry: 168 * time.Hour,
		Issuer:           "cardnest",
	})
	authHandler := NewAuthHandler(authService, CookieConfig{Name: "token"})

	r := gin.New()
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	res := w.Result()
	defer res.Body.Close()
	for _, cookie := range res.Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r := newAuthRouter(t)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"role":"STUDENT","login_id":"42","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	// Without remember_me the cookie carries no Max-Age and dies with the
	// browser session.
	assert.Equal(t, 0, cookie.MaxAge)
	assert.Contains(t, w.Body.String(), "stu-1")
}

func TestLoginRememberMePinsMaxAge(t *testing.T) {
	r := newAuthRouter(t)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"role":"STUDENT","login_id":"42","password":"secret123","remember_me":true}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.Equal(t, int((168 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestLoginBadCredentials(t *testing.T) {
	r := newAuthRouter(t)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"role":"STUDENT","login_id":"42","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
	res := w.Result()
	defer res.Body.Close()
	assert.Empty(t, res.Cookies())
}

func TestLogoutClearsCookie(t *testing.T) {
	r := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func injectClaims(claims *models.SessionClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, claims)
		c.Next()
	}
}
