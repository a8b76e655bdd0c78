package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"stillwriter/internal/apperr"
)

// keyPrefix namespaces canonical images within the bucket.
const keyPrefix = "images/"

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// Compile-time interface check.
var _ Store = (*S3Store)(nil)

// NewS3Store creates an S3-backed blob store for the given bucket.
// The client should be initialized from the shared AWS config.
func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put stores data under images/{key}.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	objectKey := keyPrefix + key
	log.Debug().Str("bucket", s.bucket).Str("key", objectKey).Int("bytes", len(data)).Msg("Uploading blob to S3")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objectKey,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: S3 PutObject %s: %v", apperr.ErrStorage, objectKey, err)
	}
	return nil
}

// Get retrieves the blob stored under images/{key}.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey := keyPrefix + key

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &objectKey,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: S3 GetObject %s: %v", apperr.ErrStorage, objectKey, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read S3 object %s: %v", apperr.ErrStorage, objectKey, err)
	}
	return data, nil
}
