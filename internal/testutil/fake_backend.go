package testutil

import (
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/httpclient"
	"github.com/hiretrack/hiretrack/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

var (
	reListRecords     = regexp.MustCompile(`/onboarding-records$`)
	reUpdateRecord    = regexp.MustCompile(`/onboarding-records/(\d+)$`)
	reApplicationStat = regexp.MustCompile(`/applications/(\d+)/status$`)
	reInterviews      = regexp.MustCompile(`/interviews$`)
	reResume          = regexp.MustCompile(`/applications/(\d+)/resume$`)
)

// StatusUpdate is one accepted PUT /applications/{id}/status
type StatusUpdate struct {
	ApplicationID int64
	Status        string
}

// FakeHRBackend is a stateful stand-in for the HR REST backend, served through
// a MockHTTPClient fallback handler. Explicitly registered or queued mock
// responses still take precedence over it.
type FakeHRBackend struct {
	mu sync.Mutex

	records []*backend.RecordDTO
	resumes map[int64]MockResponse

	listFailure      *MockResponse
	interviewFailure map[int64]MockResponse
	statusFailure    map[int64]MockResponse

	interviews    []backend.CreateInterviewRequest
	statusUpdates []StatusUpdate
	nextInterview int64

	onRequest func(req *httpclient.Request)
}

// NewFakeHRBackend installs the fake as the fallback handler of client
func NewFakeHRBackend(client *MockHTTPClient) *FakeHRBackend {
	f := &FakeHRBackend{
		resumes:          make(map[int64]MockResponse),
		interviewFailure: make(map[int64]MockResponse),
		statusFailure:    make(map[int64]MockResponse),
		nextInterview:    1,
	}
	client.SetHandler(f.handle)
	return f
}

// AddApplicant stores a record and returns it
func (f *FakeHRBackend) AddApplicant(id, applicationID int64, name, email, position string, status types.ApplicationStatus) *backend.RecordDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	r := &backend.RecordDTO{
		ID:                backend.FlexInt64(id),
		ApplicationID:     backend.FlexInt64(applicationID),
		EmployeeName:      name,
		EmployeeEmail:     email,
		Position:          position,
		Department:        "Engineering",
		AppliedAt:         now,
		ApplicationStatus: string(status),
		OnboardingStatus:  string(types.OnboardingStatusPendingDocuments),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	f.records = append(f.records, r)
	return r
}

// SetRawStatus overwrites the stored status string verbatim
func (f *FakeHRBackend) SetRawStatus(id int64, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.findLocked(id); r != nil {
		r.ApplicationStatus = status
	}
}

// StatusOf returns the stored application status of record id
func (f *FakeHRBackend) StatusOf(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.findLocked(id); r != nil {
		return r.ApplicationStatus
	}
	return ""
}

func (f *FakeHRBackend) SetResume(applicationID int64, contentType string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if int64(r.ApplicationID) == applicationID {
			r.ResumePath = "resumes/" + strconv.FormatInt(applicationID, 10)
		}
	}
	f.resumes[applicationID] = MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers:    map[string]string{"Content-Type": contentType},
	}
}

// FailList makes GET /onboarding-records answer resp until ClearFailures
func (f *FakeHRBackend) FailList(resp MockResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFailure = &resp
}

// FailInterviewFor makes POST /interviews for applicationID answer resp
func (f *FakeHRBackend) FailInterviewFor(applicationID int64, resp MockResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interviewFailure[applicationID] = resp
}

// FailStatusFor makes PUT /applications/{applicationID}/status answer resp
func (f *FakeHRBackend) FailStatusFor(applicationID int64, resp MockResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusFailure[applicationID] = resp
}

// OnRequest registers a hook run before each request is served, outside the
// fake's lock, so it may inspect local state mid-flight
func (f *FakeHRBackend) OnRequest(fn func(req *httpclient.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRequest = fn
}

func (f *FakeHRBackend) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFailure = nil
	f.interviewFailure = make(map[int64]MockResponse)
	f.statusFailure = make(map[int64]MockResponse)
}

// Interviews returns the accepted interview creations
func (f *FakeHRBackend) Interviews() []backend.CreateInterviewRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.CreateInterviewRequest(nil), f.interviews...)
}

// StatusUpdates returns the accepted status changes
func (f *FakeHRBackend) StatusUpdates() []StatusUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StatusUpdate(nil), f.statusUpdates...)
}

func (f *FakeHRBackend) findLocked(id int64) *backend.RecordDTO {
	r, _ := lo.Find(f.records, func(r *backend.RecordDTO) bool { return int64(r.ID) == id })
	return r
}

func (f *FakeHRBackend) findByApplicationLocked(applicationID int64) *backend.RecordDTO {
	r, _ := lo.Find(f.records, func(r *backend.RecordDTO) bool { return int64(r.ApplicationID) == applicationID })
	return r
}

func (f *FakeHRBackend) handle(req *httpclient.Request) MockResponse {
	f.mu.Lock()
	hook := f.onRequest
	f.mu.Unlock()
	if hook != nil {
		hook(req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := requestPath(req.URL)
	switch {
	case req.Method == http.MethodGet && reListRecords.MatchString(path):
		if f.listFailure != nil {
			return *f.listFailure
		}
		return JSONResponse(http.StatusOK, map[string]interface{}{"data": f.records})

	case req.Method == http.MethodPut && reUpdateRecord.MatchString(path):
		id := pathID(reUpdateRecord, path)
		r := f.findLocked(id)
		if r == nil {
			return JSONResponse(http.StatusNotFound, map[string]string{"message": "Record not found"})
		}
		var body struct {
			Status string `json:"status"`
		}
		_ = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(req.Body, &body)
		r.OnboardingStatus = body.Status
		return JSONResponse(http.StatusOK, map[string]interface{}{"data": r})

	case req.Method == http.MethodPut && reApplicationStat.MatchString(path):
		applicationID := pathID(reApplicationStat, path)
		if resp, ok := f.statusFailure[applicationID]; ok {
			return resp
		}
		r := f.findByApplicationLocked(applicationID)
		if r == nil {
			return JSONResponse(http.StatusNotFound, map[string]string{"message": "Application not found"})
		}
		var body struct {
			Status string `json:"status"`
		}
		_ = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(req.Body, &body)
		r.ApplicationStatus = body.Status
		f.statusUpdates = append(f.statusUpdates, StatusUpdate{ApplicationID: applicationID, Status: body.Status})
		return JSONResponse(http.StatusOK, map[string]string{"message": "Status updated"})

	case req.Method == http.MethodPost && reInterviews.MatchString(path):
		var body backend.CreateInterviewRequest
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(req.Body, &body); err != nil {
			return JSONResponse(http.StatusBadRequest, map[string]string{"message": "Malformed payload"})
		}
		if resp, ok := f.interviewFailure[body.ApplicationID]; ok {
			return resp
		}
		if f.findByApplicationLocked(body.ApplicationID) == nil {
			return JSONResponse(http.StatusNotFound, map[string]string{"message": "Application not found"})
		}
		f.interviews = append(f.interviews, body)
		id := f.nextInterview
		f.nextInterview++
		return JSONResponse(http.StatusCreated, map[string]interface{}{
			"data": map[string]interface{}{"id": id, "application_id": body.ApplicationID, "status": "scheduled"},
		})

	case req.Method == http.MethodGet && reResume.MatchString(path):
		if resp, ok := f.resumes[pathID(reResume, path)]; ok {
			return resp
		}
		return JSONResponse(http.StatusNotFound, map[string]string{"message": "Resume not found"})
	}

	return MockResponse{StatusCode: http.StatusNotFound, Body: []byte("Not Found")}
}

func pathID(re *regexp.Regexp, path string) int64 {
	m := re.FindStringSubmatch(path)
	if len(m) < 2 {
		return 0
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)
	return id
}
