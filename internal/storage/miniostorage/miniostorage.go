// Package miniostorage provides structure to work with minio-storage
package miniostorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/config"
)

type MinioImageStorage struct {
	bucket    string
	publicURL string
	client    *minio.Client
}

func NewMinioClient(cfg *config.Config) (*MinioImageStorage, error) {
	bucket := cfg.GetString("BUCKET_NAME")

	if bucket == "" {
		bucket = "default"
		log.Printf("Bucket name is empty. Using default value %q...", bucket)
	}

	user := cfg.GetString("MINIO_USER")
	pass := cfg.GetString("MINIO_PASS")
	addr := cfg.GetString("MINIO_CONTAINER_NAME")

	// публичная база для ссылок, которые уходят клиенту и сохраняются в истории
	publicURL := strings.TrimSuffix(cfg.GetString("PUBLIC_STORAGE_URL"), "/")
	if publicURL == "" {
		publicURL = "http://" + addr + ":9000"
	}

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(addr+":9000", &minio.Options{
		Creds:  credentials.NewStaticV4(user, pass, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет
	if err := ensureBucket(context.Background(), strg, bucket); err != nil {
		log.Println("Failed to create bucket in MinIO:", err)
		return nil, err
	}

	return &MinioImageStorage{bucket: bucket, publicURL: publicURL, client: strg}, nil
}

// Upload - кладет объект и возвращает публичную ссылку на него
func (s *MinioImageStorage) Upload(ctx context.Context, key string, size int64, contentType string, r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("nil reader passed to storage.Upload")
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", err
	}

	return s.publicURL + "/" + s.bucket + "/" + key, nil
}

// Delete - принимает публичную ссылку, т.к. в истории хранится именно она
func (s *MinioImageStorage) Delete(ctx context.Context, imageURL string) error {
	key, err := s.keyFromURL(imageURL)
	if err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioImageStorage) keyFromURL(imageURL string) (string, error) {
	prefix := s.publicURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", fmt.Errorf("image URL %q doesn't belong to storage %q", imageURL, prefix)
	}

	key := strings.TrimPrefix(imageURL, prefix)
	if key == "" {
		return "", fmt.Errorf("image URL %q contains no object key", imageURL)
	}
	return key, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
