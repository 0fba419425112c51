package service

import (
	"testing"

	"github.com/hiretrack/hiretrack/internal/domain/notification"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/testutil"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service NotificationService
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewNotificationService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *NotificationServiceSuite) appendStatus(email string, status types.ApplicationStatus) {
	title, message := StatusNotificationCopy(status, "Engineer")
	err := s.GetStores().NotificationRepo.Append(s.GetContext(), &notification.Notification{
		Type:           types.NotificationTypeStatusUpdate,
		ApplicantEmail: email,
		Position:       "Engineer",
		Title:          title,
		Message:        message,
		Status:         status,
	})
	s.Require().NoError(err)
}

func (s *NotificationServiceSuite) TestListNotifications() {
	resp, err := s.service.ListNotifications(s.GetContext())
	s.Require().NoError(err)
	s.Empty(resp.Items)
	s.Equal(0, resp.UnreadCount)

	s.appendStatus("a@example.com", types.ApplicationStatusShortListed)
	s.appendStatus("b@example.com", types.ApplicationStatusRejected)

	resp, err = s.service.ListNotifications(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 2)
	// newest first
	s.Equal("b@example.com", resp.Items[0].ApplicantEmail)
	s.Equal(2, resp.UnreadCount)
}

func (s *NotificationServiceSuite) TestMarkRead() {
	s.appendStatus("a@example.com", types.ApplicationStatusShortListed)
	s.appendStatus("b@example.com", types.ApplicationStatusRejected)

	resp, err := s.service.ListNotifications(s.GetContext())
	s.Require().NoError(err)

	s.Require().NoError(s.service.MarkRead(s.GetContext(), resp.Items[1].ID))

	unread, err := s.service.UnreadCount(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, unread)

	resp, err = s.service.ListNotifications(s.GetContext())
	s.Require().NoError(err)
	s.False(resp.Items[0].Read)
	s.True(resp.Items[1].Read)

	err = s.service.MarkRead(s.GetContext(), 9999)
	s.True(ierr.IsNotFound(err))
}

func (s *NotificationServiceSuite) TestListInterviewDetails() {
	details, err := s.service.ListInterviewDetails(s.GetContext())
	s.Require().NoError(err)
	s.Empty(details)

	err = s.GetStores().NotificationRepo.UpsertInterviewDetail(s.GetContext(), &notification.InterviewDetail{
		Interview:      notification.Interview{ApplicationID: 1, Date: "2030-01-01", Time: "09:00", Type: types.InterviewTypeInPerson, Venue: "HQ"},
		ApplicantEmail: "a@example.com",
		Status:         types.InterviewDetailStatusScheduled,
	})
	s.Require().NoError(err)

	details, err = s.service.ListInterviewDetails(s.GetContext())
	s.Require().NoError(err)
	s.Len(details, 1)
}
