package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/service"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

// @Summary List notifications
// @Description Newest first, capped feed of applicant facing notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} dto.ListNotificationsResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	resp, err := h.service.ListNotifications(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Notification marked as read"})
}

// @Summary List interview details
// @Tags Notifications
// @Produce json
// @Success 200 {array} notification.InterviewDetail
// @Router /notifications/interviews [get]
func (h *NotificationHandler) ListInterviewDetails(c *gin.Context) {
	details, err := h.service.ListInterviewDetails(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, details)
}
