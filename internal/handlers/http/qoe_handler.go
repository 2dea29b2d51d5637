package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	"netqoe/internal/core/services"
	apperrors "netqoe/pkg/errors"

	"github.com/gin-gonic/gin"
)

// maxCalculateBody bounds the calculate request body.
const maxCalculateBody = 64 << 10

type QoEHandler struct {
	scenarioService ports.ScenarioService
}

func NewQoEHandler(scenarioService ports.ScenarioService) *QoEHandler {
	return &QoEHandler{scenarioService: scenarioService}
}

var _ ports.QoEHTTPHandler = (*QoEHandler)(nil)

func (h *QoEHandler) SetupRoutes(api *gin.RouterGroup) {
	api.GET("/qoe/parameters", h.GetParameters)
	api.POST("/qoe/calculate", h.Calculate)
	api.POST("/qoe/impact", h.EstimateImpact)
}

func (h *QoEHandler) GetParameters(c *gin.Context) {
	c.JSON(http.StatusOK, services.Catalog())
}

func (h *QoEHandler) Calculate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCalculateBody)
	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("failed to read request body"))
		return
	}

	params, err := services.DecodeParameters(body)
	if err != nil {
		_ = c.Error(parameterError(err))
		return
	}

	c.JSON(http.StatusOK, h.scenarioService.Calculate(c.Request.Context(), params))
}

// EstimateImpact runs the what-if estimator. Omitted knobs keep their defaults.
func (h *QoEHandler) EstimateImpact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCalculateBody)
	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("failed to read request body"))
		return
	}

	in := services.DefaultWhatIfInput()
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &in); err != nil {
			_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
			return
		}
	}

	result, err := h.scenarioService.EstimateWhatIf(c.Request.Context(), in)
	if errors.Is(err, domain.ErrUnknownQCIClass) {
		_ = c.Error(apperrors.NewInvalidParameterError("qci_class", err.Error()).
			WithContext("allowed", services.QCIClasses()))
		return
	}
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

// parameterError converts a DecodeParameters failure into a 400.
func parameterError(err error) *apperrors.AppError {
	var invalid *services.InvalidParameterError
	if errors.As(err, &invalid) {
		return apperrors.NewInvalidParameterError(string(invalid.Name), invalid.Error())
	}
	return apperrors.NewInvalidInputError(err.Error())
}
