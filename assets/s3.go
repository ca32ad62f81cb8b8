package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Ingestor uploads assets to an S3 bucket under a fixed key prefix and
// returns s3:// references.
type S3Ingestor struct {
	client s3PutAPI
	bucket string
	prefix string
}

func NewS3Ingestor(ctx context.Context, bucket, prefix string) (*S3Ingestor, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("assets: missing s3 bucket")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}
	return &S3Ingestor{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: normalizePrefix(prefix),
	}, nil
}

func (s *S3Ingestor) Ingest(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("assets: empty payload")
	}
	sum := sha256.Sum256(data)
	key := s.prefix + hex.EncodeToString(sum[:]) + extensionFor(contentType)

	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	}
	if ct := strings.TrimSpace(contentType); ct != "" {
		input.ContentType = &ct
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("assets: put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "uploads/"
	}
	return prefix + "/"
}
