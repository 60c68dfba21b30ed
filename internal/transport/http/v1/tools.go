package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pandu992003/weather-project-copy2/internal/toolschema"
)

// ListTools lists the Tool Host's tools and their calling schema.
// GET /v1/tools
func (h *Handler) ListTools(c echo.Context) error {
	descriptors, err := h.service.ListTools(c.Request().Context())
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tools":     descriptors,
		"functions": toolschema.ToCallingSchema(descriptors),
	})
}

// ListModels lists the models offered by the completion endpoint.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	models, err := h.service.ListModels(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]ErrorBody{
			"error": {Code: "endpoint_error", Message: err.Error()},
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"object": "list",
		"data":   models,
	})
}
