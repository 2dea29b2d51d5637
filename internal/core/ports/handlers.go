package ports

import (
	"github.com/gin-gonic/gin"
)

type QoEHTTPHandler interface {
	GetParameters(c *gin.Context)
	Calculate(c *gin.Context)
}

type ScenarioHTTPHandler interface {
	CreateScenario(c *gin.Context)
	GetScenario(c *gin.Context)
	ListScenarios(c *gin.Context)
	DeleteScenario(c *gin.Context)
	CompareScenarios(c *gin.Context)
	ImplementRecommendation(c *gin.Context)
}
