package s3

import (
	"strings"
)

// Document is one archived applicant file
type Document struct {
	// Name is the file name as presented to the user, e.g. Jane_Doe_Resume.pdf
	Name          string       `json:"name"`
	ApplicationID int64        `json:"application_id"`
	Data          []byte       `json:"data"`
	ContentType   string       `json:"content_type"`
	Type          DocumentType `json:"type"`
}

type DocumentType string

const (
	DocumentTypeResume DocumentType = "resume"
)

func NewResumeDocument(applicationID int64, name, contentType string, data []byte) *Document {
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	return &Document{
		Name:          name,
		ApplicationID: applicationID,
		Data:          data,
		ContentType:   contentType,
		Type:          DocumentTypeResume,
	}
}
