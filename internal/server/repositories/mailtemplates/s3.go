package mailtemplates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
)

// maxTemplateSize bounds how much of an object is read.
const maxTemplateSize = 1 << 20

// ObjectGetter is the part of *s3.Client the repository needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures access to an S3-compatible backend (MinIO in dev).
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	Prefix       string
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Client builds a path-style S3 client for opts.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// S3Repository reads templates stored as JSON objects at
// <prefix>/<name>/<locale>.json:
//
//	{"subject": "Welcome", "content": "Hello {{.Login}}"}
type S3Repository struct {
	client ObjectGetter
	bucket string
	prefix string
}

func NewS3Repository(client ObjectGetter, bucket, prefix string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, prefix: prefix}
}

type s3Template struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

func (r *S3Repository) key(name, locale string) string {
	return path.Join(r.prefix, name, locale+".json")
}

func (r *S3Repository) FindByNameAndLocale(ctx context.Context, name, locale string) (*models.MailTemplate, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name, locale)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("s3 error: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxTemplateSize))
	if err != nil {
		return nil, fmt.Errorf("s3 read: %w", err)
	}

	var t s3Template
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("template %s/%s: %w", name, locale, err)
	}

	return &models.MailTemplate{Name: name, Locale: locale, Subject: t.Subject, Content: t.Content}, nil
}
