package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hiretrack/hiretrack/internal/config"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
)

const (
	defaultPresignExpiryDuration = 30 * time.Minute
)

var (
	validDocumentTypes = []DocumentType{DocumentTypeResume}
)

// Service archives downloaded applicant documents in a bucket
type Service interface {
	UploadDocument(ctx context.Context, document *Document) (string, error)
	GetPresignedUrl(ctx context.Context, key string) (string, error)
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
}

// NewService returns nil when archiving is disabled
func NewService(config *config.Configuration) (Service, error) {
	if !config.Resume.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(config.Resume.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		config: &config.Resume.S3,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

// ObjectKey is where a document lands in the bucket:
// <prefix>/<type>/<application id>/<name>
func ObjectKey(prefix string, document *Document) (string, error) {
	switch document.Type {
	case DocumentTypeResume:
		key := path.Join(string(document.Type), fmt.Sprintf("%d", document.ApplicationID), document.Name)
		if prefix != "" {
			key = path.Join(prefix, key)
		}
		return key, nil
	default:
		return "", ierr.NewErrorf("invalid doc type: %s", document.Type).
			WithHintf("valid doc types are: %v", validDocumentTypes).
			Mark(ierr.ErrSystem)
	}
}

func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(defaultPresignExpiryDuration))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to presign document url").
			Mark(ierr.ErrHTTPClient)
	}
	return req.URL, nil
}

// UploadDocument stores the document and returns its object key
func (s *s3ServiceImpl) UploadDocument(ctx context.Context, document *Document) (string, error) {
	key, err := ObjectKey(s.config.KeyPrefix, document)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document.Data),
		ContentType: aws.String(document.ContentType),
	})
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to upload document").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
			Mark(ierr.ErrHTTPClient)
	}

	return key, nil
}
