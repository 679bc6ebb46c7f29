package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/taskmate-backend/internal/config"
	"github.com/google/uuid"
)

// ErrNotImage is returned for uploads whose content is not an image.
var ErrNotImage = errors.New("file must be a JPEG, PNG, GIF or WEBP image")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage keeps uploaded images in S3 when AWS is configured and on the
// local disk otherwise.
type Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string

	uploadDir string
	baseURL   string
}

// NewStorage picks S3 or local storage from the configuration.
func NewStorage(cfg config.Config) (*Storage, error) {
	if !cfg.S3Enabled() {
		return NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	}
	if cfg.AWSS3Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required when AWS credentials are set")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.AWSS3Bucket,
		region:   cfg.AWSRegion,
	}, nil
}

// NewLocalStorage writes uploads under dir and serves them from
// baseURL + "/uploads".
func NewLocalStorage(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{uploadDir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Storage) UsingS3() bool {
	return s.uploader != nil
}

// LocalDir is the directory to serve under /uploads, empty with S3.
func (s *Storage) LocalDir() string {
	if s.UsingS3() {
		return ""
	}
	return s.uploadDir
}

// UploadImage stores an image under folder and returns its public URL.
// The content type is sniffed from the data, not taken from the client.
func (s *Storage) UploadImage(ctx context.Context, folder string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrNotImage
	}
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	if s.UsingS3() {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
	}

	path := filepath.Join(s.uploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, key), nil
}

// DeleteImage removes an image previously returned by UploadImage. URLs
// this storage did not produce are ignored.
func (s *Storage) DeleteImage(ctx context.Context, imageURL string) error {
	key, ok := s.keyFromURL(imageURL)
	if !ok {
		return nil
	}

	if s.UsingS3() {
		_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	}

	err := os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Storage) keyFromURL(imageURL string) (string, bool) {
	if imageURL == "" {
		return "", false
	}
	if s.UsingS3() {
		u, err := url.Parse(imageURL)
		if err != nil || !strings.HasPrefix(u.Host, s.bucket+".") {
			return "", false
		}
		return strings.TrimPrefix(u.Path, "/"), true
	}

	prefix := s.baseURL + "/uploads/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(imageURL, prefix)
	if strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
