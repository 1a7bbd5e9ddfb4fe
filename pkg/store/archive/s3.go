package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	DefaultRegion = "us-east-1" // Default region if not specified in AWS profile
)

// Archive retains the uploaded ledgers outside the history database.
type Archive interface {
	Put(ctx context.Context, key string, payload []byte) error
}

type S3Settings struct {
	Bucket  string
	Prefix  string
	Profile string
}

type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archive(ctx context.Context, settings S3Settings) (*S3Archive, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	// Test the credentials
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("invalid AWS credentials: %w", err)
	}

	return &S3Archive{
		client: s3.NewFromConfig(awsCfg),
		bucket: settings.Bucket,
		prefix: settings.Prefix,
	}, nil
}

func (a *S3Archive) Put(ctx context.Context, key string, payload []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(a.bucket),
		Key:         awssdk.String(path.Join(a.prefix, key)),
		Body:        bytes.NewReader(payload),
		ContentType: awssdk.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("archive put %s: %w", key, err)
	}
	return nil
}

// Key builds the object key for one uploaded ledger.
func Key(id string) string {
	return fmt.Sprintf("ledgers/%s.csv", id)
}
