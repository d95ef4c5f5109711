package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/config"
)

// S3Store хранит документы в S3-совместимом бакете (MinIO).
type S3Store struct {
	client     *minio.Client
	bucket     string
	region     string
	presignTTL time.Duration
	maxBytes   int64
}

// NewS3Store создаёт клиента MinIO из конфигурации.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: init minio: %w", err)
	}
	return &S3Store{
		client:     client,
		bucket:     cfg.S3Bucket,
		region:     cfg.S3Region,
		presignTTL: cfg.PresignTTL,
		maxBytes:   cfg.MaxUploadBytes(),
	}, nil
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("storage: make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Save загружает объект. Размер должен быть известен заранее.
func (s *S3Store) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error) {
	if size > s.maxBytes {
		return 0, ErrTooLarge
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("storage: put object: %w", err)
	}
	return info.Size, nil
}

// Open возвращает поток чтения объекта.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("storage: stat object: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: get object: %w", err)
	}
	return obj, nil
}

// Delete удаляет объект; отсутствие объекта не ошибка.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("storage: remove object: %w", err)
	}
	return nil
}

// URL возвращает подписанную ссылку на скачивание.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("storage: presign object: %w", err)
	}
	return u.String(), nil
}

// Ping проверяет доступность бакета для health-check.
func (s *S3Store) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("storage: ping: %w", err)
	}
	return nil
}
