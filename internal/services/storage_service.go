// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/utils"
)

const (
	productImageFolder  = "products"
	maxProductImageSize = 10 * 1024 * 1024 // 10MB
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// StorageService stores product images in S3 when AWS credentials are
// configured and under the local uploads directory otherwise.
type StorageService struct {
	s3Client   s3iface.S3API
	config     *config.Config
	uploadsDir string
	now        func() time.Time
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{
		config:     cfg,
		uploadsDir: cfg.Frontend.UploadsDir,
		now:        time.Now,
	}

	if cfg.AWS.AccessKeyID == "" {
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

// UsesS3 reports whether uploads go to the configured bucket.
func (s *StorageService) UsesS3() bool {
	return s.s3Client != nil
}

func (s *StorageService) UploadProductImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > maxProductImageSize {
		return nil, utils.NewInvalidRequest(i18n.KeyUploadRejected, "image too large").
			WithDetails(map[string]int64{"max_bytes": maxProductImageSize})
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxProductImageSize+1))
	if err != nil {
		return nil, utils.NewInternal("failed to read upload", err)
	}
	if int64(len(fileBytes)) > maxProductImageSize {
		return nil, utils.NewInvalidRequest(i18n.KeyUploadRejected, "image too large").
			WithDetails(map[string]int64{"max_bytes": maxProductImageSize})
	}

	// The declared Content-Type is client controlled; sniff the bytes instead.
	mimeType := http.DetectContentType(fileBytes)
	if !lo.Contains(allowedImageTypes, mimeType) {
		return nil, utils.NewInvalidRequest(i18n.KeyUploadRejected, "unsupported image type").
			WithDetails(map[string]string{"mime_type": mimeType})
	}

	key := s.generateFileName(mimeType)

	if s.s3Client != nil {
		return s.uploadToS3(ctx, fileBytes, key, mimeType)
	}
	return s.uploadToLocal(fileBytes, key, mimeType)
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return nil, utils.NewInternal("failed to upload image", fmt.Errorf("upload to S3: %w", err))
	}

	logrus.WithFields(logrus.Fields{
		"bucket": s.config.AWS.S3Bucket,
		"key":    key,
		"size":   len(fileBytes),
	}).Info("Product image uploaded to S3")

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

// uploadToLocal writes under the uploads directory, which the router
// serves at /uploads.
func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.uploadsDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, utils.NewInternal("failed to store image", fmt.Errorf("create upload dir: %w", err))
	}
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return nil, utils.NewInternal("failed to store image", fmt.Errorf("write upload: %w", err))
	}

	return &UploadResult{
		URL:      "/uploads/" + key,
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

// generateFileName derives the extension from the sniffed type so the
// stored object never disagrees with its content.
func (s *StorageService) generateFileName(mimeType string) string {
	ext := "." + strings.TrimPrefix(mimeType, "image/")
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	timestamp := s.now().Format("20060102")
	return fmt.Sprintf("%s/%s_%s%s", productImageFolder, timestamp, uuid.New().String()[:8], ext)
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
