package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/halayachts/hala-api/internal/ports"
)

// uploadCacheControl marks uploads immutable; keys embed a timestamp.
const uploadCacheControl = "public, max-age=31536000, immutable"

// S3API is the subset of the S3 client used by S3Provider.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config configures an S3 or S3-compatible (MinIO) bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL overrides the URL prefix returned by PublicURL, e.g. a CDN.
	PublicBaseURL string
	UsePathStyle  bool
}

// S3Provider stores uploads in a bucket.
type S3Provider struct {
	client S3API
	cfg    S3Config
}

var _ ports.StorageProvider = (*S3Provider)(nil)

// NewS3Provider builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Provider(ctx context.Context, cfg S3Config) (*S3Provider, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage: s3 bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3ProviderWithClient(client, cfg), nil
}

// NewS3ProviderWithClient wraps an existing client.
func NewS3ProviderWithClient(client S3API, cfg S3Config) *S3Provider {
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &S3Provider{client: client, cfg: cfg}
}

// Upload puts obj in the bucket.
func (p *S3Provider) Upload(ctx context.Context, obj ports.UploadObject) (string, error) {
	body, size, err := seekableBody(obj)
	if err != nil {
		return "", err
	}
	in := &s3.PutObjectInput{
		Bucket:       aws.String(p.cfg.Bucket),
		Key:          aws.String(obj.Key),
		Body:         body,
		CacheControl: aws.String(uploadCacheControl),
	}
	if obj.ContentType != "" {
		in.ContentType = aws.String(obj.ContentType)
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", obj.Key, err)
	}
	return obj.Key, nil
}

// Delete removes key. S3 treats deleting a missing key as success; NoSuchKey
// from compatible servers is ignored too.
func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	})
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the URL for key: PublicBaseURL when set, the custom
// endpoint in path style, or the virtual-hosted AWS URL.
func (p *S3Provider) PublicURL(key string) string {
	escaped := escapeKey(key)
	switch {
	case p.cfg.PublicBaseURL != "":
		return p.cfg.PublicBaseURL + "/" + escaped
	case p.cfg.Endpoint != "":
		return p.cfg.Endpoint + "/" + p.cfg.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, escaped)
	}
}

// seekableBody buffers non-seekable bodies so the SDK can sign and retry them.
func seekableBody(obj ports.UploadObject) (io.ReadSeeker, int64, error) {
	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		return rs, obj.Size, nil
	}
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("buffer upload: %w", err)
	}
	return bytes.NewReader(b), int64(len(b)), nil
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
