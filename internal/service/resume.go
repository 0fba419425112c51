package service

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	filetypes "github.com/h2non/filetype/types"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/s3"
)

const defaultResumeExtension = "pdf"

var nonFilenameChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ResumeArtifact is a downloaded resume ready to hand to the user
type ResumeArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	// ArchiveKey is the object key when the resume was archived
	ArchiveKey string `json:"archive_key,omitempty"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

type ResumeService interface {
	Download(ctx context.Context, applicantID int64) (*ResumeArtifact, error)
	// Save downloads the resume into dir (the configured directory when empty)
	// and returns the written path
	Save(ctx context.Context, applicantID int64, dir string) (string, *ResumeArtifact, error)
}

type resumeService struct {
	ServiceParams
}

func NewResumeService(params ServiceParams) ResumeService {
	return &resumeService{ServiceParams: params}
}

func (s *resumeService) Download(ctx context.Context, applicantID int64) (*ResumeArtifact, error) {
	r, err := s.Applicants.Get(applicantID)
	if err != nil {
		return nil, err
	}
	if !r.HasResume() {
		return nil, resumeNotAvailable(r, nil)
	}

	file, err := s.Backend.DownloadResume(ctx, ApplicationIDOf(r))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, resumeNotAvailable(r, err)
		}
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, resumeNotAvailable(r, nil)
	}

	ext, contentType := resumeExtension(file.ContentType, file.Data)
	artifact := &ResumeArtifact{
		Filename:    ResumeFilename(r.EmployeeName, ext),
		ContentType: contentType,
		Data:        file.Data,
	}

	if s.S3 != nil {
		doc := s3.NewResumeDocument(ApplicationIDOf(r), artifact.Filename, artifact.ContentType, artifact.Data)
		key, err := s.S3.UploadDocument(ctx, doc)
		if err != nil {
			// archiving is best effort, the user still gets the file
			s.Logger.Errorw("failed to archive resume", "application_id", doc.ApplicationID, "error", err)
		} else {
			artifact.ArchiveKey = key
			if url, err := s.S3.GetPresignedUrl(ctx, key); err == nil {
				artifact.ArchiveURL = url
			}
		}
	}
	return artifact, nil
}

func (s *resumeService) Save(ctx context.Context, applicantID int64, dir string) (string, *ResumeArtifact, error) {
	artifact, err := s.Download(ctx, applicantID)
	if err != nil {
		return "", nil, err
	}

	if dir == "" {
		dir = s.Config.Resume.Dir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, ierr.WithError(err).
			WithHintf("Unable to create directory %s", dir).
			Mark(ierr.ErrSystem)
	}

	path := filepath.Join(dir, artifact.Filename)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return "", nil, ierr.WithError(err).
			WithHintf("Unable to write %s", path).
			Mark(ierr.ErrSystem)
	}
	s.Logger.Infow("resume saved", "applicant_id", applicantID, "path", path)
	return path, artifact, nil
}

// ResumeFilename derives the download name from the applicant name,
// e.g. "Jane Doe" -> "Jane_Doe_Resume.pdf"
func ResumeFilename(employeeName, ext string) string {
	base := strings.Trim(nonFilenameChars.ReplaceAllString(employeeName, "_"), "_")
	if base == "" {
		base = "Applicant"
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = defaultResumeExtension
	}
	return fmt.Sprintf("%s_Resume.%s", base, ext)
}

// resumeExtension picks the file extension from the declared content type,
// falling back to sniffing the bytes, then to pdf
func resumeExtension(contentType string, data []byte) (string, string) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType != "" && mediaType != "application/octet-stream" {
		if ext, ok := extensionForMIME(mediaType); ok {
			return ext, mediaType
		}
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.Extension, kind.MIME.Value
	}

	if mediaType == "" {
		mediaType = "application/pdf"
	}
	return defaultResumeExtension, mediaType
}

// extensionForMIME finds the registered extension for a media type. Several
// extensions may share one type, the alphabetically first wins.
func extensionForMIME(mediaType string) (string, bool) {
	var candidates []string
	filetype.Types.Range(func(_, v any) bool {
		if t, ok := v.(filetypes.Type); ok && t.MIME.Value == mediaType {
			candidates = append(candidates, t.Extension)
		}
		return true
	})
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], true
}

func resumeNotAvailable(r *applicant.Record, cause error) error {
	// the cause is folded into the message only: its own hint is less specific
	msg := fmt.Sprintf("resume not available for record %d", r.ID)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return ierr.NewError(msg).
		WithHintf("Resume not available for %s", r.EmployeeName).
		Mark(ierr.ErrNotFound)
}
