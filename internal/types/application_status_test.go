package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseApplicationStatus(t *testing.T) {
	tests := []struct {
		raw       string
		want      ApplicationStatus
		wantKnown bool
	}{
		{raw: "Pending", want: ApplicationStatusPending, wantKnown: true},
		{raw: "shortlisted", want: ApplicationStatusShortListed, wantKnown: true},
		{raw: "ShortListed", want: ApplicationStatusShortListed, wantKnown: true},
		{raw: "On going Interview", want: ApplicationStatusOnGoingInterview, wantKnown: true},
		{raw: "  on   GOING interview ", want: ApplicationStatusOnGoingInterview, wantKnown: true},
		{raw: "On Interview", want: ApplicationStatusOnGoingInterview, wantKnown: true},
		{raw: "Offered Accepted", want: ApplicationStatusOfferedAccepted, wantKnown: true},
		{raw: "hired", want: ApplicationStatusHired, wantKnown: true},
		{raw: "Archived", want: ApplicationStatusPending, wantKnown: false},
		{raw: "", want: ApplicationStatusPending, wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, known := ParseApplicationStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestApplicationStatusValidate(t *testing.T) {
	for _, s := range ApplicationStatuses {
		assert.NoError(t, s.Validate(), s)
	}
	assert.Error(t, ApplicationStatus("On Interview").Validate())
}

func TestParseOnboardingStatus(t *testing.T) {
	got, ok := ParseOnboardingStatus("Documents Approved")
	assert.True(t, ok)
	assert.Equal(t, OnboardingStatusDocumentsApproved, got)

	got, ok = ParseOnboardingStatus("lost")
	assert.False(t, ok)
	assert.Equal(t, OnboardingStatusPendingDocuments, got)
}

func TestInterviewDecisionTargetStatus(t *testing.T) {
	assert.Equal(t, ApplicationStatusOffered, InterviewDecisionAccepted.TargetStatus())
	assert.Equal(t, ApplicationStatusRejected, InterviewDecisionRejected.TargetStatus())
	assert.Error(t, InterviewDecision("maybe").Validate())
}

func TestApplicantFilterNormalize(t *testing.T) {
	f := &ApplicantFilter{Section: "on interview", Search: "  jane "}
	f.Normalize()
	assert.Equal(t, string(ApplicationStatusOnGoingInterview), f.Section)
	assert.Equal(t, "jane", f.Search)

	empty := &ApplicantFilter{}
	empty.Normalize()
	assert.Equal(t, StatusSectionAll, empty.Section)
}
