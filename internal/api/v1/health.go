package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/service"
)

type HealthHandler struct {
	sync   service.SyncController
	logger *logger.Logger
}

func NewHealthHandler(sync service.SyncController, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		sync:   sync,
		logger: logger,
	}
}

// @Summary Health check
// @Description Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"sync_running": h.sync.Running(),
	})
}
