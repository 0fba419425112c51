package applicant

import (
	"strings"
	"sync"
	"time"

	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/samber/lo"
)

// Collection is the local copy of the authoritative applicant list together
// with its aggregate counters. It is replaced wholesale on every successful
// fetch and patched in place by optimistic updates.
type Collection struct {
	mu        sync.RWMutex
	records   []*Record
	byID      map[int64]*Record
	counts    Counts
	fetchedAt time.Time
}

func NewCollection() *Collection {
	return &Collection{
		byID:   make(map[int64]*Record),
		counts: NewCounts(),
	}
}

// Replace swaps the whole collection. Records with a duplicate id keep the
// first occurrence.
func (c *Collection) Replace(records []*Record) {
	unique := lo.UniqBy(records, func(r *Record) int64 { return r.ID })
	byID := lo.SliceToMap(unique, func(r *Record) (int64, *Record) { return r.ID, r })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = unique
	c.byID = byID
	c.counts = CountRecords(unique)
	c.fetchedAt = time.Now().UTC()
}

// Clear resets the collection and counters to the empty state
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.byID = make(map[int64]*Record)
	c.counts = NewCounts()
	c.fetchedAt = time.Time{}
}

// Get returns a copy of the record with the given id
func (c *Collection) Get(id int64) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byID[id]
	if !ok {
		return nil, ierr.NewErrorf("applicant %d not found", id).
			WithHint("Applicant not found. Try refreshing the list.").
			Mark(ierr.ErrNotFound)
	}
	return r.Clone(), nil
}

// Patch applies fn to the stored record and recomputes the counters.
// It returns a copy of the patched record.
func (c *Collection) Patch(id int64, fn func(r *Record)) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.byID[id]
	if !ok {
		return nil, ierr.NewErrorf("applicant %d not found", id).
			WithHint("Applicant not found. Try refreshing the list.").
			Mark(ierr.ErrNotFound)
	}
	fn(r)
	c.counts = CountRecords(c.records)
	return r.Clone(), nil
}

// List returns copies of every record in backend order
func (c *Collection) List() []*Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.records, func(r *Record, _ int) *Record { return r.Clone() })
}

// Counts returns a copy of the aggregate counters
func (c *Collection) Counts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := Counts{Total: c.counts.Total, ByStatus: make(map[types.ApplicationStatus]int, len(c.counts.ByStatus))}
	for k, v := range c.counts.ByStatus {
		out.ByStatus[k] = v
	}
	return out
}

// FetchedAt is the time of the last wholesale replace, zero when empty
func (c *Collection) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Filter returns the records matching every populated field of f
func (c *Collection) Filter(f *types.ApplicantFilter) []*Record {
	if f == nil {
		f = types.NewDefaultApplicantFilter()
	}
	f.Normalize()
	return lo.Filter(c.List(), func(r *Record, _ int) bool {
		return Matches(r, f)
	})
}

// Matches reports whether r passes filter f
func Matches(r *Record, f *types.ApplicantFilter) bool {
	if f.Section != "" && f.Section != types.StatusSectionAll &&
		string(r.ApplicationStatus) != f.Section {
		return false
	}
	if f.ApplicationStatus != "" && r.ApplicationStatus != f.ApplicationStatus {
		return false
	}
	if f.OnboardingStatus != "" && r.OnboardingStatus != f.OnboardingStatus {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := []string{r.EmployeeName, r.EmployeeEmail, r.Position, r.Department}
		if !lo.SomeBy(haystack, func(s string) bool {
			return strings.Contains(strings.ToLower(s), needle)
		}) {
			return false
		}
	}
	return true
}
