package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/api/cookie"
	"github.com/ksalp/portal/internal/core/ports"
	"github.com/ksalp/portal/internal/pkg/fingerprint"
)

// Session resolves the session cookie to the caller. Missing, forged,
// expired and fingerprint-mismatched sessions leave the request anonymous.
func Session(sessions ports.SessionService, cookies *cookie.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token := cookies.Token(req)
			if token == "" {
				return next(c)
			}

			user, err := sessions.Validate(req.Context(), token, fingerprint.FromUserAgent(req.UserAgent()))
			if err != nil {
				return err
			}
			if user != nil {
				SetSession(c, user, token)
			}
			return next(c)
		}
	}
}
