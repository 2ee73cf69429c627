// Package uploader pushes image payloads to S3-compatible object storage and
// returns the public URL. Client-side compression happens before the bytes
// reach this package; the hard size cap here is a backstop.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures the S3 target.
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3-compatible providers
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string // optional CDN/base URL for returned links
	KeyTemplate     string // see BuildObjectKey
	AllowedFormats  string // comma-separated extensions, empty = any
	MaxSizeMB       int
}

// Uploader accepts a binary payload and a logical path, returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, logicalPath, filename string, payload []byte) (string, error)
}

// S3 is the object-storage backed uploader.
type S3 struct {
	client *s3.Client
	opts   Options
}

func NewS3(opts Options) *S3 {
	cfg := s3.Options{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
	}
	if opts.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(opts.Endpoint)
		cfg.UsePathStyle = true
	}
	return &S3{client: s3.New(cfg), opts: opts}
}

// Upload validates the payload, renders the object key under logicalPath,
// stores the object, and returns its public URL.
func (u *S3) Upload(ctx context.Context, logicalPath, filename string, payload []byte) (string, error) {
	if err := ValidateImage(filename, int64(len(payload)), u.opts.AllowedFormats, u.opts.MaxSizeMB); err != nil {
		return "", err
	}

	key := BuildObjectKey(u.opts.KeyTemplate, logicalPath, filename, payload)
	contentType := DetectContentType(filename, payload)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploader: put object: %w", err)
	}

	return u.publicURL(key), nil
}

func (u *S3) publicURL(key string) string {
	if base := strings.TrimRight(u.opts.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.opts.Bucket, u.opts.Region, key)
}
