package applicant

import (
	"testing"

	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() []*Record {
	return []*Record{
		{ID: 1, ApplicationID: 41, EmployeeName: "Jane Doe", EmployeeEmail: "jane@example.com", Position: "Engineer", Department: "Platform", ApplicationStatus: types.ApplicationStatusPending, OnboardingStatus: types.OnboardingStatusPendingDocuments},
		{ID: 2, ApplicationID: 42, EmployeeName: "John Roe", EmployeeEmail: "john@example.com", Position: "Designer", Department: "Product", ApplicationStatus: types.ApplicationStatusShortListed, OnboardingStatus: types.OnboardingStatusPendingDocuments},
		{ID: 3, ApplicationID: 43, EmployeeName: "Ada Poe", EmployeeEmail: "ada@example.com", Position: "Engineer", Department: "Data", ApplicationStatus: types.ApplicationStatusOnGoingInterview, OnboardingStatus: types.OnboardingStatusCompleted},
		{ID: 4, ApplicationID: 44, EmployeeName: "Max Moe", EmployeeEmail: "max@example.com", Position: "Analyst", Department: "Finance", ApplicationStatus: types.ApplicationStatusShortListed, OnboardingStatus: types.OnboardingStatusDocumentsApproved},
	}
}

func sum(c Counts) int {
	total := 0
	for _, n := range c.ByStatus {
		total += n
	}
	return total
}

func TestReplaceComputesCounts(t *testing.T) {
	c := NewCollection()
	c.Replace(fixtures())

	counts := c.Counts()
	assert.Equal(t, 4, counts.Total)
	assert.Equal(t, counts.Total, sum(counts))
	assert.Equal(t, 2, counts.ByStatus[types.ApplicationStatusShortListed])
	assert.Equal(t, 0, counts.ByStatus[types.ApplicationStatusHired])
	assert.Len(t, counts.ByStatus, len(types.ApplicationStatuses))
	assert.False(t, c.FetchedAt().IsZero())
}

func TestReplaceDropsDuplicateIDs(t *testing.T) {
	records := fixtures()
	dup := *records[0]
	dup.EmployeeName = "Shadow"
	c := NewCollection()
	c.Replace(append(records, &dup))

	assert.Len(t, c.List(), 4)
	got, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.EmployeeName)
}

func TestReplaceIsIdempotent(t *testing.T) {
	c := NewCollection()
	c.Replace(fixtures())
	first, firstCounts := c.List(), c.Counts()

	c.Replace(fixtures())
	assert.Equal(t, first, c.List())
	assert.Equal(t, firstCounts, c.Counts())
}

func TestPatchRecountsAndIsolates(t *testing.T) {
	c := NewCollection()
	c.Replace(fixtures())

	patched, err := c.Patch(1, func(r *Record) { r.ApplicationStatus = types.ApplicationStatusShortListed })
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationStatusShortListed, patched.ApplicationStatus)

	counts := c.Counts()
	assert.Equal(t, 3, counts.ByStatus[types.ApplicationStatusShortListed])
	assert.Equal(t, 0, counts.ByStatus[types.ApplicationStatusPending])
	assert.Equal(t, counts.Total, sum(counts))

	// mutating a returned copy never leaks back
	patched.EmployeeName = "changed"
	again, _ := c.Get(1)
	assert.Equal(t, "Jane Doe", again.EmployeeName)

	_, err = c.Patch(99, func(r *Record) {})
	assert.True(t, ierr.IsNotFound(err))
}

func TestClear(t *testing.T) {
	c := NewCollection()
	c.Replace(fixtures())
	c.Clear()

	assert.Empty(t, c.List())
	assert.Equal(t, 0, c.Counts().Total)
	assert.True(t, c.FetchedAt().IsZero())
}

func TestFilter(t *testing.T) {
	c := NewCollection()
	c.Replace(fixtures())

	tests := []struct {
		name   string
		filter *types.ApplicantFilter
		want   []int64
	}{
		{name: "nil matches everything", filter: nil, want: []int64{1, 2, 3, 4}},
		{name: "section", filter: &types.ApplicantFilter{Section: "ShortListed"}, want: []int64{2, 4}},
		{name: "legacy section alias", filter: &types.ApplicantFilter{Section: "On Interview"}, want: []int64{3}},
		{name: "search by department", filter: &types.ApplicantFilter{Search: "platform"}, want: []int64{1}},
		{name: "search by position", filter: &types.ApplicantFilter{Search: "ENGINEER"}, want: []int64{1, 3}},
		{name: "search by email", filter: &types.ApplicantFilter{Search: "max@"}, want: []int64{4}},
		{
			name:   "all filters are anded",
			filter: &types.ApplicantFilter{Section: "ShortListed", OnboardingStatus: types.OnboardingStatusDocumentsApproved},
			want:   []int64{4},
		},
		{
			name:   "section and application status disagree",
			filter: &types.ApplicantFilter{Section: "ShortListed", ApplicationStatus: types.ApplicationStatusPending},
			want:   []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Filter(tt.filter)
			ids := make([]int64, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
