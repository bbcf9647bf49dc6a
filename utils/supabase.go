package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseStorage uploads into a Supabase Storage bucket and returns the public URL.
type SupabaseStorage struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

func NewSupabaseStorage(supabaseURL, key, bucket string) *SupabaseStorage {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStorage{
		client:  storage.NewClient(baseURL+"/storage/v1", key, nil),
		baseURL: baseURL,
		bucket:  bucket,
	}
}

// Save stores the file as images/<name>.<ext> in the bucket.
func (s *SupabaseStorage) Save(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	objectPath := "images/" + ObjectName(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, &buf, options); err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath), nil
}
