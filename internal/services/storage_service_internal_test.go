package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/utils"
)

// A minimal PNG header is enough for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func upload(data []byte) (multipart.File, *multipart.FileHeader) {
	return memoryFile{bytes.NewReader(data)}, &multipart.FileHeader{Filename: "blob.png", Size: int64(len(data))}
}

type fakeS3 struct {
	s3iface.S3API

	inputs []*s3.PutObjectInput
	body   []byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, input)
	if input.Body != nil {
		f.body, _ = io.ReadAll(input.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func TestUploadProductImage_Local(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewStorageService(&config.Config{Frontend: config.FrontendConfig{UploadsDir: dir}})
	require.NoError(t, err)
	svc.now = fixedClock
	assert.False(t, svc.UsesS3())

	file, header := upload(pngBytes)
	result, err := svc.UploadProductImage(context.Background(), file, header)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^products/20260314_[0-9a-f]{8}\.png$`), result.Key)
	assert.Equal(t, "/uploads/"+result.Key, result.URL)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, int64(len(pngBytes)), result.Size)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestUploadProductImage_Rejected(t *testing.T) {
	svc, err := NewStorageService(&config.Config{Frontend: config.FrontendConfig{UploadsDir: t.TempDir()}})
	require.NoError(t, err)

	t.Run("not an image", func(t *testing.T) {
		file, header := upload([]byte("just some text pretending to be a png"))
		_, err := svc.UploadProductImage(context.Background(), file, header)
		assert.Equal(t, utils.KindInvalidRequest, utils.KindOf(err))
	})

	t.Run("declared too large", func(t *testing.T) {
		file, header := upload(pngBytes)
		header.Size = maxProductImageSize + 1
		_, err := svc.UploadProductImage(context.Background(), file, header)
		assert.Equal(t, utils.KindInvalidRequest, utils.KindOf(err))
	})

	t.Run("actually too large", func(t *testing.T) {
		data := append(append([]byte{}, pngBytes...), make([]byte, maxProductImageSize)...)
		file, header := upload(data)
		header.Size = 1
		_, err := svc.UploadProductImage(context.Background(), file, header)
		assert.Equal(t, utils.KindInvalidRequest, utils.KindOf(err))
	})
}

func TestUploadProductImage_S3(t *testing.T) {
	fake := &fakeS3{}
	svc := &StorageService{
		s3Client: fake,
		config:   &config.Config{AWS: config.AWSConfig{Region: "us-east-1", S3Bucket: "blob-images"}},
		now:      fixedClock,
	}
	assert.True(t, svc.UsesS3())

	file, header := upload(pngBytes)
	result, err := svc.UploadProductImage(context.Background(), file, header)
	require.NoError(t, err)

	require.Len(t, fake.inputs, 1)
	input := fake.inputs[0]
	assert.Equal(t, "blob-images", aws.StringValue(input.Bucket))
	assert.Equal(t, result.Key, aws.StringValue(input.Key))
	assert.Equal(t, "image/png", aws.StringValue(input.ContentType))
	assert.Equal(t, s3.ObjectCannedACLPublicRead, aws.StringValue(input.ACL))
	assert.Equal(t, pngBytes, fake.body)
	assert.Equal(t, "https://blob-images.s3.us-east-1.amazonaws.com/"+result.Key, result.URL)
}

func TestUploadProductImage_S3Failure(t *testing.T) {
	svc := &StorageService{
		s3Client: &fakeS3{err: assert.AnError},
		config:   &config.Config{AWS: config.AWSConfig{S3Bucket: "blob-images"}},
		now:      fixedClock,
	}

	file, header := upload(pngBytes)
	_, err := svc.UploadProductImage(context.Background(), file, header)
	assert.Equal(t, utils.KindInternal, utils.KindOf(err))
}

func TestGetS3URL_CloudFront(t *testing.T) {
	svc := &StorageService{config: &config.Config{AWS: config.AWSConfig{CloudFrontURL: "https://cdn.blobshop.test/"}}}
	assert.Equal(t, "https://cdn.blobshop.test/products/a.png", svc.getS3URL("products/a.png"))
}
