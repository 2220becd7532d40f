package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/api/middleware"
	"github.com/ksalp/portal/internal/core/domain"
)

// signedIn returns the caller resolved by the Session middleware, or
// ErrLoginRequired for anonymous requests.
func signedIn(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrLoginRequired
	}
	return user, nil
}
