package service

import (
	"context"

	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/samber/lo"
)

// NotificationService exposes the local applicant facing feed
type NotificationService interface {
	ListNotifications(ctx context.Context) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context) (int, error)
	ListInterviewDetails(ctx context.Context) ([]*notification.InterviewDetail, error)
}

type notificationService struct {
	ServiceParams
}

func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{ServiceParams: params}
}

func (s *notificationService) ListNotifications(ctx context.Context) (*dto.ListNotificationsResponse, error) {
	feed, err := s.NotificationRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ListNotificationsResponse{
		Items:       feed,
		UnreadCount: countUnread(feed),
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	if err := s.NotificationRepo.MarkRead(ctx, id); err != nil {
		return err
	}
	s.Logger.Debugw("notification marked read", "notification_id", id)
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	feed, err := s.NotificationRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	return countUnread(feed), nil
}

func (s *notificationService) ListInterviewDetails(ctx context.Context) ([]*notification.InterviewDetail, error) {
	return s.NotificationRepo.ListInterviewDetails(ctx)
}

func countUnread(feed []*notification.Notification) int {
	return lo.CountBy(feed, func(n *notification.Notification) bool { return !n.Read })
}
