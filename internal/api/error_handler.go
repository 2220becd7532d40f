package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/api/handler"
	"github.com/ksalp/portal/internal/core/domain"
)

type apiError struct {
	status  int
	code    string
	message string
}

// knownErrors maps domain sentinels to their response.
var knownErrors = []struct {
	target error
	resp   apiError
}{
	{domain.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "sign-in failed", "The combination of password and email does not exist."}},
	{domain.ErrTooManyAttempts, apiError{http.StatusTooManyRequests, "too many attempts", "Too many failed sign-in attempts. Please try again later."}},
	{domain.ErrLoginRequired, apiError{http.StatusUnauthorized, "account required", "You need to be signed in to use this feature."}},
	{domain.ErrPremiumRequired, apiError{http.StatusForbidden, "premium required", "This feature requires premium."}},
	{domain.ErrPremiumLiteRequired, apiError{http.StatusForbidden, "premium lite required", "This feature requires premium or premium lite."}},
	{domain.ErrCodeNotFound, apiError{http.StatusBadRequest, "invalid code", "The code could not be found."}},
	{domain.ErrCodeExpired, apiError{http.StatusBadRequest, "expired code", "The code has expired."}},
	{domain.ErrCodeUsed, apiError{http.StatusBadRequest, "used code", "The code has already been used."}},
	{domain.ErrUserNotFound, apiError{http.StatusNotFound, "account not found", "The account could not be found."}},
	{domain.ErrLoginNotFound, apiError{http.StatusBadRequest, "invalid account login", "The account login could not be found."}},
	{domain.ErrEmailTaken, apiError{http.StatusConflict, "email already in use", "An account with this email address already exists."}},
	{domain.ErrEmailDomain, apiError{http.StatusBadRequest, "invalid email provider", "Please use an email from sluz.ch or ksalp.ch."}},
	{domain.ErrWrongPassword, apiError{http.StatusBadRequest, "invalid password", "The old password is invalid."}},
	{domain.ErrDelivery, apiError{http.StatusBadGateway, "exception during email delivery", "An error occurred while sending the e-mail. Please try again later or contact us."}},
	{domain.ErrBanned, apiError{http.StatusForbidden, "banned", "Access from this address has been blocked."}},
	{domain.ErrPayloadTooLarge, apiError{http.StatusRequestEntityTooLarge, "payload too large", "The request body is too large."}},
}

// invalidFields names the rejection of enumerated settings.
var invalidFields = map[string]apiError{
	"theme":  {http.StatusBadRequest, "invalid theme", "The theme could not be found."},
	"grade":  {http.StatusBadRequest, "invalid grade", "The grade could not be found."},
	"search": {http.StatusBadRequest, "invalid search engine", "The search engine could not be found."},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their status and stable error code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<code>", "message": "<text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		r := resolveError(err, log, c)
		body := handler.ErrorResponse{Error: r.code, Message: r.message}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(r.status)
			return
		}
		_ = c.JSON(r.status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) apiError {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if body, ok := he.Message.(handler.ErrorResponse); ok {
			return apiError{he.Code, body.Error, body.Message}
		}
		return apiError{he.Code, strings.ToLower(http.StatusText(he.Code)), messageOf(he)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		if r, ok := invalidFields[ve.Field]; ok {
			return r
		}
		return apiError{http.StatusBadRequest, "invalid field", ve.Error()}
	}

	for _, k := range knownErrors {
		if errors.Is(err, k.target) {
			return k.resp
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return apiError{http.StatusInternalServerError, "internal server error", "An unexpected error occurred."}
}

func messageOf(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok {
		return s
	}
	return http.StatusText(he.Code)
}
