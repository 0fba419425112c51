// Package backend is the typed client of the HR REST backend
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/httpclient"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/session"
	"github.com/hiretrack/hiretrack/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client exposes the backend endpoints the pipeline needs. Every error it
// returns is marked with an ierr sentinel and carries a displayable hint.
type Client interface {
	ListOnboardingRecords(ctx context.Context) ([]*applicant.Record, error)
	UpdateOnboardingStatus(ctx context.Context, recordID int64, status types.OnboardingStatus) error
	UpdateApplicationStatus(ctx context.Context, applicationID int64, status types.ApplicationStatus) error
	CreateInterview(ctx context.Context, req *CreateInterviewRequest) (*InterviewResponse, error)
	DownloadResume(ctx context.Context, applicationID int64) (*ResumeFile, error)
}

type client struct {
	http    httpclient.Client
	session session.Store
	baseURL string
	logger  *logger.Logger
}

// NewClient creates a backend client rooted at cfg.Backend.BaseURL
func NewClient(h httpclient.Client, s session.Store, cfg *config.Configuration, log *logger.Logger) Client {
	return &client{
		http:    h,
		session: s,
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		logger:  log,
	}
}

func (c *client) ListOnboardingRecords(ctx context.Context) ([]*applicant.Record, error) {
	resp, err := c.do(ctx, OpListRecords, http.MethodGet, "/onboarding-records", nil)
	if err != nil {
		return nil, err
	}

	dtos, err := decodeRecordList(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint(OpListRecords.fallback()).
			Mark(ierr.ErrServer)
	}

	records := make([]*applicant.Record, 0, len(dtos))
	for _, d := range dtos {
		records = append(records, d.ToDomain(c.logger))
	}
	return records, nil
}

func decodeRecordList(body []byte) ([]RecordDTO, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []RecordDTO
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *client) UpdateOnboardingStatus(ctx context.Context, recordID int64, status types.OnboardingStatus) error {
	body, err := json.Marshal(statusRequest{Status: string(status)})
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	_, err = c.do(ctx, OpUpdateOnboarding, http.MethodPut, fmt.Sprintf("/onboarding-records/%d", recordID), body)
	return err
}

func (c *client) UpdateApplicationStatus(ctx context.Context, applicationID int64, status types.ApplicationStatus) error {
	body, err := json.Marshal(statusRequest{Status: string(status)})
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	_, err = c.do(ctx, OpUpdateStatus, http.MethodPut, fmt.Sprintf("/applications/%d/status", applicationID), body)
	return err
}

func (c *client) CreateInterview(ctx context.Context, req *CreateInterviewRequest) (*InterviewResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	resp, err := c.do(ctx, OpCreateInterview, http.MethodPost, "/interviews", body)
	if err != nil {
		return nil, err
	}

	out := &InterviewResponse{}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return out, nil
	}
	// the body is informational only; a 2xx is what counts
	var env struct {
		Data *InterviewResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &env); err == nil && env.Data != nil {
		return env.Data, nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		c.logger.Debugw("unreadable interview response body", "error", err)
	}
	return out, nil
}

func (c *client) DownloadResume(ctx context.Context, applicationID int64) (*ResumeFile, error) {
	resp, err := c.do(ctx, OpDownloadResume, http.MethodGet, fmt.Sprintf("/applications/%d/resume", applicationID), nil)
	if err != nil {
		return nil, err
	}
	return &ResumeFile{
		ContentType:        header(resp.Headers, "Content-Type"),
		ContentDisposition: header(resp.Headers, "Content-Disposition"),
		Data:               resp.Body,
	}, nil
}

func header(h map[string]string, name string) string {
	if v, ok := h[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// do attaches the credential, sends the request and classifies failures
func (c *client) do(ctx context.Context, op Operation, method, path string, body []byte) (*httpclient.Response, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	req := &httpclient.Request{
		Method: method,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Accept":        "application/json",
			"Authorization": "Bearer " + token,
		},
		Body: body,
	}
	if rid := types.GetRequestID(ctx); rid != "" {
		req.Headers[types.HeaderRequestID] = rid
	}

	resp, err := c.http.Send(ctx, req)
	if err != nil {
		classified := classify(op, err)
		if ierr.IsUnauthenticated(classified) {
			if expErr := c.session.Expire(ctx, fmt.Sprintf("%s %s returned 401", method, path)); expErr != nil {
				c.logger.Errorw("failed to expire session", "error", expErr)
			}
		}
		c.logger.Debugw("backend request failed",
			"operation", op, "method", method, "path", path, "error", classified)
		return nil, classified
	}
	return resp, nil
}
