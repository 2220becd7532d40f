package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/api/metrics"
	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

// Gate admits or rejects every request by client address before any handler
// runs, then writes the access-log entry. Errors are rendered here so the
// recorded status is the one sent to the client.
func Gate(gate ports.RequestGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			verdict, err := gate.Admit(req.Context(), c.RealIP(), req.ContentLength)
			if err != nil {
				return err
			}

			switch {
			case verdict.Banned:
				metrics.GateDecisionsTotal.WithLabelValues("banned").Inc()
				err = domain.ErrBanned
			case verdict.TooLarge:
				metrics.GateDecisionsTotal.WithLabelValues("too_large").Inc()
				err = domain.ErrPayloadTooLarge
			default:
				metrics.GateDecisionsTotal.WithLabelValues("admitted").Inc()
				err = next(c)
			}
			if err != nil {
				c.Error(err)
			}

			gate.Record(ports.AccessEntry{
				IP:            c.RealIP(),
				Score:         verdict.Score,
				Authenticated: CurrentUser(c) != nil,
				Method:        req.Method,
				Path:          req.URL.Path,
				UserAgent:     req.UserAgent(),
				Host:          req.Host,
				Headers:       req.Header,
				ContentLength: req.ContentLength,
				Status:        c.Response().Status,
				RequestID:     c.Response().Header().Get(echo.HeaderXRequestID),
			})
			return nil
		}
	}
}
