package assets

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/dsmirnovs/clipvault/internal/server/config"
)

// ObjectStore is the collaborator contract for the external object store:
// upload a staged local file and get back a dereferenceable delivery URL,
// or delete an object by its storage key. Delete is best-effort and
// non-transactional.
type ObjectStore interface {
	Upload(ctx context.Context, localPath string, keyPrefix string) (string, error)
	Delete(ctx context.Context, objectID string) error
}

// S3Store implements ObjectStore against an S3-compatible backend (MinIO in
// development). Objects are stored under extension-less keys; the delivery
// URL adds a version segment and the original extension on top of the
// configured media base.
type S3Store struct {
	config *sc.Config
}

func NewS3Store(config *sc.Config) *S3Store {
	return &S3Store{config: config}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload pushes the staged file to the bucket under a fresh key below
// keyPrefix and returns its delivery URL. The staged file is left in place;
// discarding it is the caller's concern.
func (s *S3Store) Upload(ctx context.Context, localPath string, keyPrefix string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s", keyPrefix, uuid.New())
	ext := filepath.Ext(localPath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return s.deliveryURL(key, ext), nil
}

// Delete removes an object by its storage key.
func (s *S3Store) Delete(ctx context.Context, objectID string) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectID, err)
	}
	return nil
}

// deliveryURL projects a storage key into its public URL. ExtractObjectID
// inverts this projection.
func (s *S3Store) deliveryURL(key, ext string) string {
	base := strings.TrimRight(s.config.MediaBaseURL, "/")
	return fmt.Sprintf("%s/upload/v%d/%s%s", base, time.Now().Unix(), key, ext)
}
