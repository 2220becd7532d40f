package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/core/domain"
)

type constantsResponse struct {
	Grades        []string                       `json:"grades"`
	Languages     []string                       `json:"languages"`
	SearchEngines map[string]domain.SearchEngine `json:"searchEngines"`
	Themes        map[string]string              `json:"themes"`
}

// Constants handles GET /api/v1/constants.
//
// @Summary      List the selectable account values
// @Tags         constants
// @Produce      json
// @Success      200  {object}  constantsResponse
// @Router       /api/v1/constants [get]
func Constants(c echo.Context) error {
	return c.JSON(http.StatusOK, constantsResponse{
		Grades:        domain.Grades,
		Languages:     domain.Languages,
		SearchEngines: domain.SearchEngines,
		Themes:        domain.Themes,
	})
}
