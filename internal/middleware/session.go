package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cardnest/cardnest-api/internal/models"
	"github.com/cardnest/cardnest-api/internal/service"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
	"github.com/cardnest/cardnest-api/pkg/response"
)

// ContextUserKey is the gin context key storing session claims.
const ContextUserKey = "currentUser"

// SessionOptions configures token extraction and failure handling.
type SessionOptions struct {
	CookieName string
	LoginPath  string
}

// Session protects routes by requiring a valid session token. The token is
// read from the session cookie, falling back to a bearer Authorization
// header for non-browser clients. Browser navigations that fail the check
// are redirected to the login page; API calls get a JSON error.
func Session(authService *service.AuthService, opts SessionOptions) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "token"
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	return func(c *gin.Context) {
		token := extractToken(c, opts.CookieName)
		if token == "" {
			deny(c, opts.LoginPath, appErrors.ErrUnauthorized)
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			deny(c, opts.LoginPath, err)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// RequireRole restricts a route group to one principal role. The route
// prefix a principal may enter is fixed by their role, so a student token
// presented under /institute is rejected regardless of the target resource.
func RequireRole(role models.Role, opts SessionOptions) gin.HandlerFunc {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			deny(c, opts.LoginPath, appErrors.ErrUnauthorized)
			return
		}
		claims, ok := claimsValue.(*models.SessionClaims)
		if !ok || claims.Role != role {
			deny(c, opts.LoginPath, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func deny(c *gin.Context, loginPath string, err error) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return
	}
	response.Error(c, err)
	c.Abort()
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
