package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	"netqoe/internal/core/services"
	"netqoe/internal/infrastructure/middleware"
	apperrors "netqoe/pkg/errors"
	"netqoe/pkg/validation"

	"github.com/gin-gonic/gin"
)

type ScenarioHandler struct {
	scenarioService ports.ScenarioService
}

func NewScenarioHandler(scenarioService ports.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarioService: scenarioService}
}

var _ ports.ScenarioHTTPHandler = (*ScenarioHandler)(nil)

func (h *ScenarioHandler) SetupRoutes(api *gin.RouterGroup) {
	api.GET("/scenarios", h.ListScenarios)
	api.POST("/scenarios", h.CreateScenario)
	api.GET("/scenarios/compare", h.CompareScenarios)
	api.GET("/scenarios/:id", h.GetScenario)
	api.DELETE("/scenarios/:id", h.DeleteScenario)
	api.POST("/scenarios/:id/recommendations/:index/implement", h.ImplementRecommendation)
}

type CreateScenarioRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsBaseline  bool            `json:"is_baseline"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ScenarioSummary is the list view of a scenario.
type ScenarioSummary struct {
	ID          domain.ScenarioID    `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsBaseline  bool                 `json:"is_baseline"`
	Score       float64              `json:"qoe_score"`
	Rating      domain.QualityRating `json:"quality_rating"`
	CreatedAt   time.Time            `json:"created_at"`
}

func summarize(s *domain.Scenario) ScenarioSummary {
	return ScenarioSummary{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		IsBaseline:  s.IsBaseline,
		Score:       s.Result.Score,
		Rating:      s.Result.Rating,
		CreatedAt:   s.CreatedAt,
	}
}

func (h *ScenarioHandler) CreateScenario(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	params, err := services.DecodeParameters(req.Parameters)
	if err != nil {
		_ = c.Error(parameterError(err))
		return
	}

	scenario, err := h.scenarioService.SaveScenario(c.Request.Context(), principal, ports.SaveScenarioRequest{
		Name:        req.Name,
		Description: req.Description,
		Parameters:  params,
		IsBaseline:  req.IsBaseline,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, scenario)
}

func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := scenarioIDParam(c, c.Param("id"))
	if !ok {
		return
	}

	scenario, err := h.scenarioService.GetScenario(c.Request.Context(), principal, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	scenarios, err := h.scenarioService.ListScenarios(c.Request.Context(), principal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]ScenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, summarize(s))
	}
	c.JSON(http.StatusOK, gin.H{
		"scenarios": out,
		"count":     len(out),
	})
}

func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := scenarioIDParam(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.scenarioService.DeleteScenario(c.Request.Context(), principal, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScenarioHandler) CompareScenarios(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	a, ok := scenarioIDParam(c, c.Query("a"))
	if !ok {
		return
	}
	b, ok := scenarioIDParam(c, c.Query("b"))
	if !ok {
		return
	}

	comparison, err := h.scenarioService.CompareScenarios(c.Request.Context(), principal, a, b)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (h *ScenarioHandler) ImplementRecommendation(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := scenarioIDParam(c, c.Param("id"))
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		_ = c.Error(apperrors.NewInvalidInputError("recommendation index must be a non-negative integer"))
		return
	}

	scenario, err := h.scenarioService.MarkRecommendationImplemented(c.Request.Context(), principal, id, index)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func requirePrincipal(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("authentication required"))
	}
	return principal, ok
}

func scenarioIDParam(c *gin.Context, raw string) (domain.ScenarioID, bool) {
	if err := validation.ValidateScenarioID(raw); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
		return "", false
	}
	return domain.ScenarioID(raw), true
}
