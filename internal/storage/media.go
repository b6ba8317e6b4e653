package storage

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/velora/backend/pkg/config"
)

// MediaStore uploads client payloads to object storage before the domain
// record references them, and deletes them by handle on record deletion.
type MediaStore interface {
	Upload(ctx context.Context, folder string, file *multipart.FileHeader) (url, objectKey string, err error)
	Delete(ctx context.Context, objectKey string) error
}

// MinioMediaStore implements MediaStore against a MinIO bucket
type MinioMediaStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioMediaStore creates a MediaStore backed by MinIO
func NewMinioMediaStore(cfg *config.Config) (*MinioMediaStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	log.Println("MinIO client initialized.")
	return &MinioMediaStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: cfg.MinioPublicURL,
	}, nil
}

// Upload stores the file under a unique object name inside folder and returns
// the durable URL plus the object key used for later deletion.
func (s *MinioMediaStore) Upload(ctx context.Context, folder string, file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	objectName := folder + "/" + uuid.New().String() + ext
	contentType := file.Header.Get("Content-Type")

	_, err = s.client.PutObject(ctx, s.bucket, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	url := s.publicURL + "/" + s.bucket + "/" + objectName
	return url, objectName, nil
}

// Delete removes a stored object by its key
func (s *MinioMediaStore) Delete(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}
