package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the error envelope of every API failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse acknowledges a state-changing request.
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func success(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, SuccessResponse{Status: "success", Message: message})
}

// bind decodes and validates the JSON body into req. Failures are returned
// as *echo.HTTPError carrying an ErrorResponse.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, ErrorResponse{
			Error:   "json parse error",
			Message: "JSON object could not be parsed.",
		}).SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Error:   "missing fields",
			Message: err.Error(),
		}).SetInternal(err)
	}
	return nil
}
