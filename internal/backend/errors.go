package backend

import (
	"net/http"
	"sort"
	"strings"

	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/httpclient"
)

// Operation names a backend call for error classification
type Operation string

const (
	OpListRecords      Operation = "list_onboarding_records"
	OpUpdateOnboarding Operation = "update_onboarding_status"
	OpUpdateStatus     Operation = "update_application_status"
	OpCreateInterview  Operation = "create_interview"
	OpDownloadResume   Operation = "download_resume"
)

func (op Operation) fallback() string {
	switch op {
	case OpListRecords:
		return "Failed to load onboarding records."
	case OpUpdateOnboarding:
		return "Failed to update onboarding status."
	case OpUpdateStatus:
		return "Failed to update application status."
	case OpCreateInterview:
		return "Failed to schedule interview"
	case OpDownloadResume:
		return "Failed to download resume."
	default:
		return "Request failed."
	}
}

func (op Operation) notFound() string {
	switch op {
	case OpListRecords:
		return "Onboarding endpoint not found. Please check the API configuration."
	case OpDownloadResume:
		return "Resume not available"
	case OpUpdateOnboarding:
		return "Onboarding record not found"
	default:
		return "Application not found"
	}
}

func (op Operation) forbidden() string {
	switch op {
	case OpListRecords:
		return "You do not have permission to view onboarding records."
	case OpCreateInterview:
		return "You do not have permission to schedule interviews."
	case OpDownloadResume:
		return "You do not have permission to download resumes."
	default:
		return "You do not have permission to update this application."
	}
}

// classify maps a transport error onto the error taxonomy, attaching the
// message that should reach the user
func classify(op Operation, err error) error {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		if ierr.IsNetwork(err) || ierr.IsUnauthenticated(err) {
			return err
		}
		return ierr.WithError(err).
			WithHint("Unable to reach the server. Please check your connection.").
			Mark(ierr.ErrNetwork)
	}

	body := parseServerError(httpErr.Response)
	details := map[string]any{"operation": string(op), "status_code": httpErr.StatusCode}

	switch httpErr.StatusCode {
	case http.StatusUnauthorized:
		return ierr.WithError(err).
			WithHint("Session expired. Please log in again.").
			WithReportableDetails(details).
			Mark(ierr.ErrUnauthenticated)
	case http.StatusForbidden:
		return ierr.WithError(err).
			WithHint(op.forbidden()).
			WithReportableDetails(details).
			Mark(ierr.ErrPermissionDenied)
	case http.StatusNotFound:
		return ierr.WithError(err).
			WithHint(op.notFound()).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	case http.StatusUnprocessableEntity:
		hint := body.fieldErrors()
		if hint == "" {
			hint = firstNonEmpty(body.Message, "Validation failed")
		}
		return ierr.WithError(err).
			WithHint(hint).
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	case http.StatusBadRequest:
		return ierr.WithError(err).
			WithHintf("Bad request: %s", firstNonEmpty(body.Message, body.Error, "invalid request")).
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	default:
		return ierr.WithError(err).
			WithHint(firstNonEmpty(body.Message, op.fallback())).
			WithReportableDetails(details).
			Mark(ierr.ErrServer)
	}
}

func parseServerError(raw []byte) serverError {
	var se serverError
	if len(raw) == 0 {
		return se
	}
	_ = json.Unmarshal(raw, &se)
	se.Message = strings.TrimSpace(se.Message)
	se.Error = strings.TrimSpace(se.Error)
	return se
}

// fieldErrors flattens {"errors": {"field": ["msg", ...]}} into one line,
// fields in name order
func (se serverError) fieldErrors() string {
	if len(se.Errors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(se.Errors))
	for f := range se.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, m := range se.Errors[f] {
			if m = strings.TrimSpace(m); m != "" {
				msgs = append(msgs, m)
			}
		}
	}
	return strings.Join(msgs, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// StatusCode returns the backend HTTP status behind err, 0 if none
func StatusCode(err error) int {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		return httpErr.StatusCode
	}
	return 0
}
