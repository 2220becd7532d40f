package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/api/metrics"
	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

// SettingsHandler updates the signed-in caller's account settings.
type SettingsHandler struct {
	accounts ports.AccountService
}

func NewSettingsHandler(accounts ports.AccountService) *SettingsHandler {
	return &SettingsHandler{accounts: accounts}
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

type classRequest struct {
	Class string `json:"class_" validate:"required,max=256"`
}

type gradeRequest struct {
	Grade string `json:"grade" validate:"required"`
}

type searchRequest struct {
	Search string `json:"search" validate:"required"`
}

type iframeRequest struct {
	IFrame *bool `json:"iframe" validate:"required"`
}

type newsletterRequest struct {
	Newsletter *bool `json:"newsletter" validate:"required"`
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,max=1024"`
	Password    string `json:"password" validate:"required,max=1024"`
}

type favoritesRequest struct {
	Favorites string `json:"favorites" validate:"required,max=65536"`
}

// Theme handles POST /api/v1/account/settings/theme.
//
// @Summary      Change the theme
// @Description  Requires premium or premium lite.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      themeRequest  true  "Theme key"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /api/v1/account/settings/theme [post]
func (h *SettingsHandler) Theme(c echo.Context) error {
	var req themeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "theme", domain.UserUpdate{Theme: &req.Theme}, "Theme updated successfully.")
}

// Class handles POST /api/v1/account/settings/class_. Classes are space separated.
//
// @Summary      Change the classes
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      classRequest  true  "Space separated class names"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/class_ [post]
func (h *SettingsHandler) Class(c echo.Context) error {
	var req classRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "class_", domain.UserUpdate{Classes: domain.SplitClasses(req.Class)}, "Class updated successfully.")
}

// Grade handles POST /api/v1/account/settings/grade.
//
// @Summary      Change the grade
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      gradeRequest  true  "Grade"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/grade [post]
func (h *SettingsHandler) Grade(c echo.Context) error {
	var req gradeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "grade", domain.UserUpdate{Grade: &req.Grade}, "Grade updated successfully.")
}

// Search handles POST /api/v1/account/settings/search.
//
// @Summary      Change the search engine
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      searchRequest  true  "Search engine name"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/search [post]
func (h *SettingsHandler) Search(c echo.Context) error {
	var req searchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "search", domain.UserUpdate{Search: &req.Search}, "Search engine updated successfully.")
}

// IFrame handles POST /api/v1/account/settings/iframe.
//
// @Summary      Toggle embedded pages
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      iframeRequest  true  "Embed setting"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/iframe [post]
func (h *SettingsHandler) IFrame(c echo.Context) error {
	var req iframeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "iframe", domain.UserUpdate{IFrame: req.IFrame}, "Iframe settings updated successfully.")
}

// Newsletter handles POST /api/v1/account/settings/newsletter.
//
// @Summary      Toggle the newsletter
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      newsletterRequest  true  "Newsletter setting"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/newsletter [post]
func (h *SettingsHandler) Newsletter(c echo.Context) error {
	var req newsletterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "newsletter", domain.UserUpdate{Newsletter: req.Newsletter}, "Newsletter settings updated successfully.")
}

// Favorites handles POST /api/v1/account/settings/favorites. Only lines of
// the form "url | label" are kept.
//
// @Summary      Replace the favorites
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      favoritesRequest  true  "Newline separated favorites"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/favorites [post]
func (h *SettingsHandler) Favorites(c echo.Context) error {
	var req favoritesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, "favorites", domain.UserUpdate{Favorites: domain.ParseFavorites(req.Favorites)}, "Favorites settings updated successfully.")
}

// Password handles POST /api/v1/account/settings/password.
//
// @Summary      Change the password
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      passwordRequest  true  "Current and new password"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/v1/account/settings/password [post]
func (h *SettingsHandler) Password(c echo.Context) error {
	user, err := signedIn(c)
	if err != nil {
		return err
	}

	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.Password); err != nil {
		return err
	}
	metrics.SettingsUpdatesTotal.WithLabelValues("password").Inc()
	return success(c, "Password updated successfully.")
}

func (h *SettingsHandler) update(c echo.Context, setting string, up domain.UserUpdate, message string) error {
	user, err := signedIn(c)
	if err != nil {
		return err
	}

	if _, err := h.accounts.Update(c.Request().Context(), user.ID, up); err != nil {
		return err
	}
	metrics.SettingsUpdatesTotal.WithLabelValues(setting).Inc()
	return success(c, message)
}
