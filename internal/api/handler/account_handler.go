package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/api/cookie"
	"github.com/ksalp/portal/internal/api/metrics"
	"github.com/ksalp/portal/internal/api/middleware"
	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
	"github.com/ksalp/portal/internal/pkg/fingerprint"
)

// AccountHandler serves sign-in, sign-out, registration and the caller's
// account summary.
type AccountHandler struct {
	sessions     ports.SessionService
	registration ports.RegistrationService
	cookies      *cookie.Manager
	now          func() time.Time
}

func NewAccountHandler(
	sessions ports.SessionService,
	registration ports.RegistrationService,
	cookies *cookie.Manager,
	now func() time.Time,
) *AccountHandler {
	if now == nil {
		now = time.Now
	}
	return &AccountHandler{
		sessions:     sessions,
		registration: registration,
		cookies:      cookies,
		now:          now,
	}
}

// --- Request / Response types ---

type signInRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type registerRequest struct {
	Name       string `json:"name" validate:"required,max=128"`
	Class      string `json:"class_" validate:"required,max=256"`
	Grade      string `json:"grade" validate:"required"`
	Email      string `json:"email" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,max=1024"`
	Newsletter *bool  `json:"newsletter" validate:"required"`
}

type confirmRequest struct {
	Code string `json:"code" validate:"required"`
}

type accountResponse struct {
	Valid    bool         `json:"valid"`
	Paid     bool         `json:"paid"`
	PaidLite bool         `json:"paidLite"`
	Info     *domain.User `json:"info"`
}

// SignIn handles POST /api/v1/account/signin.
//
// @Summary      Sign in with e-mail and password
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /api/v1/account/signin [post]
func (h *AccountHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	r := c.Request()
	login, err := h.sessions.SignIn(r.Context(), ports.SignInInput{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint.FromUserAgent(r.UserAgent()),
		ClientIP:    c.RealIP(),
	})
	if err != nil {
		metrics.SignInsTotal.WithLabelValues(signInResult(err)).Inc()
		return err
	}

	if err := h.cookies.Issue(c.Response(), login.Token); err != nil {
		metrics.SignInsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.SignInsTotal.WithLabelValues("success").Inc()
	return success(c, "You are now signed-in with cookies.")
}

// Register handles POST /api/v1/account/register.
//
// @Summary      Start a registration
// @Description  Stages the account and e-mails a single-use confirmation link.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New account"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/account/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	_, err := h.registration.Begin(c.Request().Context(), ports.RegistrationInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Classes:    domain.SplitClasses(req.Class),
		Grade:      req.Grade,
		Newsletter: *req.Newsletter,
	})
	metrics.RegistrationsTotal.WithLabelValues("begin", registrationResult(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, "An email has been sent to your inbox.")
}

// RegisterContinue handles POST /api/v1/account/register/continue.
//
// @Summary      Confirm a registration
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      confirmRequest  true  "Confirmation code from the e-mail"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/v1/account/register/continue [post]
func (h *AccountHandler) RegisterContinue(c echo.Context) error {
	var req confirmRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	_, err := h.registration.Confirm(c.Request().Context(), req.Code)
	metrics.RegistrationsTotal.WithLabelValues("confirm", registrationResult(err)).Inc()
	if err != nil {
		return err
	}
	return success(c, "Account created successfully.")
}

// Logout handles POST /api/v1/account/logout.
//
// @Summary      End the current session
// @Tags         account
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /api/v1/account/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	if err := h.sessions.SignOut(c.Request().Context(), middleware.SessionToken(c)); err != nil {
		return err
	}
	h.cookies.Clear(c.Response())
	metrics.SignOutsTotal.Inc()
	return success(c, "Account logged out successfully.")
}

// Account handles GET /api/v1/account. Anonymous callers get valid=false.
//
// @Summary      Describe the caller's account
// @Tags         account
// @Produce      json
// @Success      200  {object}  accountResponse
// @Router       /api/v1/account [get]
func (h *AccountHandler) Account(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusOK, accountResponse{})
	}

	now := h.now()
	return c.JSON(http.StatusOK, accountResponse{
		Valid:    true,
		Paid:     user.ValidPayment(now),
		PaidLite: user.ValidPaymentLite(now),
		Info:     user,
	})
}

func signInResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "failed"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func registrationResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrEmailDomain):
		return "email_domain"
	case errors.Is(err, domain.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, domain.ErrDelivery):
		return "delivery"
	case errors.Is(err, domain.ErrCodeNotFound):
		return "invalid_code"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired_code"
	case errors.Is(err, domain.ErrCodeUsed):
		return "used_code"
	default:
		return "error"
	}
}
