package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/service"
)

// RequireLogin rejects anonymous callers.
func RequireLogin() echo.MiddlewareFunc {
	return guard(service.RequireLogin)
}

// RequirePremium rejects callers without active premium.
func RequirePremium(now func() time.Time) echo.MiddlewareFunc {
	return guard(func(u *domain.User) error {
		return service.RequirePremium(u, now())
	})
}

// RequirePremiumLite rejects callers with neither premium nor premium lite.
func RequirePremiumLite(now func() time.Time) echo.MiddlewareFunc {
	return guard(func(u *domain.User) error {
		return service.RequirePremiumLite(u, now())
	})
}

func guard(check func(*domain.User) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := check(CurrentUser(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
