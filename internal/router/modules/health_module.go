package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
