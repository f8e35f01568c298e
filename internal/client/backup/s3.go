package backup

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/medbook/internal/client/config"
	"github.com/dmitrijs2005/medbook/internal/common"
)

// Uploader stores an export file off-site.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) error
}

// objectPutter is the part of *s3.Client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

type S3Uploader struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Uploader builds an uploader for an S3-compatible bucket (AWS or
// MinIO via Endpoint). Static credentials are used when both keys are set,
// otherwise the default AWS chain.
func NewS3Uploader(ctx context.Context, cfg config.BackupConfig) (*S3Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 backup: bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 backup: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Uploader(client, cfg.S3Bucket), nil
}

func newS3Uploader(client objectPutter, bucket string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: "exports"}
}

// Upload puts data under exports/<name>.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte) error {
	key := path.Join(u.prefix, name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(common.ContentTypeJSON),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}
