package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type s3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store connects to an S3-compatible endpoint using env
// credentials. Returns a disabled store when archiving is off.
func NewS3Store(ctx context.Context, cfg config.ArchiveConfig) (Store, error) {
	if !cfg.Enabled {
		return disabled{}, nil
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("archive enabled but S3_ENDPOINT/S3_ACCESS_KEY/S3_SECRET_KEY not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: true,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &s3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *s3Store) SaveFile(ctx context.Context, kind string, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	contentType := "audio/ogg"
	if filepath.Ext(path) == ".wav" {
		contentType = "audio/wav"
	}

	key := fmt.Sprintf("%s/%s/%s%s",
		kind, time.Now().UTC().Format("2006-01-02"), uuid.NewString(), filepath.Ext(path))

	_, err = s.client.PutObject(ctx, s.bucket, key, f, st.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func (s *s3Store) Enabled() bool { return true }

type disabled struct{}

func (disabled) SaveFile(context.Context, string, string) (string, error) { return "", nil }
func (disabled) Enabled() bool                                            { return false }
