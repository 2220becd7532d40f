package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/core/domain"
)

const (
	userKey  = "portal.user"
	tokenKey = "portal.session_token"
)

// SetSession stores the resolved caller on the request context.
func SetSession(c echo.Context, user *domain.User, token string) {
	c.Set(userKey, user)
	c.Set(tokenKey, token)
}

// CurrentUser returns the signed-in caller, or nil for anonymous requests.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// SessionToken returns the token of the signed-in caller's session.
func SessionToken(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}
