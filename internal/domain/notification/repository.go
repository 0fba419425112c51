package notification

import (
	"context"
	"strings"
)

// Repository is the local, durable notification store. Implementations never
// fail on malformed persisted data: it is logged and treated as empty.
type Repository interface {
	// Append inserts n at the head of the feed and truncates the feed to the
	// configured capacity. n.ID is assigned when zero.
	Append(ctx context.Context, n *Notification) error
	// List returns the feed newest first
	List(ctx context.Context) ([]*Notification, error)
	// MarkRead flags one notification as read
	MarkRead(ctx context.Context, id int64) error

	// UpsertInterviewDetail removes any detail for the same applicant email and
	// inserts d at the head
	UpsertInterviewDetail(ctx context.Context, d *InterviewDetail) error
	// FindInterviewDetail returns nil when no detail exists for email
	FindInterviewDetail(ctx context.Context, email string) (*InterviewDetail, error)
	ListInterviewDetails(ctx context.Context) ([]*InterviewDetail, error)
}

// KeyFor is the canonical form of an applicant email used as a lookup key
func KeyFor(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
