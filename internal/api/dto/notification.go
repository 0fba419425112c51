package dto

import (
	"github.com/hiretrack/hiretrack/internal/domain/notification"
)

type ListNotificationsResponse struct {
	Items       []*notification.Notification `json:"items"`
	UnreadCount int                          `json:"unread_count"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
