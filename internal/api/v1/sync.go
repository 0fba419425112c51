package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/service"
)

type SyncHandler struct {
	controller service.SyncController
	toasts     *service.ToastLog
	log        *logger.Logger
}

func NewSyncHandler(controller service.SyncController, toasts *service.ToastLog, log *logger.Logger) *SyncHandler {
	return &SyncHandler{
		controller: controller,
		toasts:     toasts,
		log:        log,
	}
}

// @Summary Refresh applicants
// @Description Manual refresh of the whole applicant collection
// @Tags Sync
// @Produce json
// @Success 200 {object} dto.SyncResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /sync/refresh [post]
func (h *SyncHandler) Refresh(c *gin.Context) {
	resp, err := h.controller.Refresh(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Report focus
// @Description Checks the cross-process change flag and refreshes when another process left one
// @Tags Sync
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /sync/focus [post]
func (h *SyncHandler) Focus(c *gin.Context) {
	fetched, err := h.controller.Focus(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refreshed": fetched})
}

// @Summary Announce a change
// @Description Publishes an in-process change event, every live view refreshes
// @Tags Sync
// @Accept json
// @Produce json
// @Param event body pubsub.ChangeEvent false "Change event"
// @Success 202 {object} map[string]bool
// @Router /sync/changed [post]
func (h *SyncHandler) Changed(c *gin.Context) {
	var event pubsub.ChangeEvent
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&event); err != nil {
			c.Error(invalidRequest(err))
			return
		}
	}

	if err := h.controller.NotifyChanged(c.Request.Context(), event); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"published": true})
}

// @Summary Recent toasts
// @Description Latest user facing outcome messages, newest first
// @Tags Sync
// @Produce json
// @Success 200 {array} types.Toast
// @Router /toasts [get]
func (h *SyncHandler) ListToasts(c *gin.Context) {
	c.JSON(http.StatusOK, h.toasts.Recent())
}
