package storage

import (
	"context"
	"io"

	"email-report-pipeline/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ArtifactArchive keeps a durable copy of downloaded report payloads outside
// the database. Archival is best effort; callers treat failures as
// non-fatal.
type ArtifactArchive interface {
	Store(ctx context.Context, key string, body io.ReadSeeker) error
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

type S3Archive struct {
	client *s3.S3
	bucket string
}

func NewS3Archive(cfg config.S3Config) (*S3Archive, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, err
	}

	return &S3Archive{
		client: s3.New(sess),
		bucket: cfg.Bucket,
	}, nil
}

func (s *S3Archive) Store(ctx context.Context, key string, body io.ReadSeeker) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	return err
}

func (s *S3Archive) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}
