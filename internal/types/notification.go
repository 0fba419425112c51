package types

type NotificationType string

const (
	NotificationTypeStatusUpdate       NotificationType = "status_update"
	NotificationTypeInterviewScheduled NotificationType = "interview_scheduled"
)

func (t NotificationType) String() string {
	return string(t)
}
