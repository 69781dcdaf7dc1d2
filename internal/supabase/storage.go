package supabase

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"

	"agency-portfolio-backend/internal/catalog"
)

var ErrInvalidDataURL = errors.New("invalid data URL")

// StorageClient uploads project images to a public Supabase Storage bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// UploadDataURL stores an inline "data:<mime>;base64,<payload>" image under
// projects/<uuid>.<ext> and returns its public URL.
func (s *StorageClient) UploadDataURL(ctx context.Context, dataURL string) (string, error) {
	data, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	detected := mimetype.Detect(data)
	storagePath := fmt.Sprintf("projects/%s%s", uuid.NewString(), detected.Extension())

	contentType := detected.String()
	upsert := false
	_, err = s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.PublicURL(storagePath), nil
}

func (s *StorageClient) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

// DecodeDataURL returns the payload of a base64 data URL.
func DecodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURL
	}
	return data, nil
}

var _ catalog.ImageUploader = (*StorageClient)(nil)
