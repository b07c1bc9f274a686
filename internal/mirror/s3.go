package mirror

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store implements ObjectStore against one S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store builds a client from the remote config. cfg must be non-nil
// and validated (see LoadRemoteConfig).
func NewS3Store(ctx context.Context, cfg *RemoteConfig) (*S3Store, error) {
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// ListAll pages through the bucket with continuation tokens until exhausted.
func (s *S3Store) ListAll(ctx context.Context) ([]string, error) {
	var keys []string
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		continuation = out.NextContinuationToken
	}
}

// DeleteBatch issues one DeleteObjects call for the given keys.
func (s *S3Store) DeleteBatch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
	}
	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return fmt.Errorf("deleting objects: %w", err)
	}
	return nil
}

// Put uploads one object.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

// Delete removes a single object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// WebsiteURL returns the bucket's static-website endpoint.
func (s *S3Store) WebsiteURL() string {
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com", s.bucket, s.region)
}

// KeyFromURL extracts the object key from a virtual-hosted bucket URL for
// the given bucket, e.g. https://bucket.s3.region.amazonaws.com/a/b.jpg.
func KeyFromURL(bucket, rawURL string) (string, error) {
	pattern := regexp.MustCompile(`^https?://` + regexp.QuoteMeta(bucket) + `\.s3[^/]*\.amazonaws\.com/(.+)$`)
	m := pattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("url %q does not address bucket %q", rawURL, bucket)
	}
	key, err := url.PathUnescape(m[1])
	if err != nil {
		return "", fmt.Errorf("unescaping key from %q: %w", rawURL, err)
	}
	return strings.TrimPrefix(key, "/"), nil
}

// DeleteByURL resolves a bucket URL to its key and deletes the object.
func (s *S3Store) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := KeyFromURL(s.bucket, rawURL)
	if err != nil {
		return err
	}
	return s.Delete(ctx, key)
}
