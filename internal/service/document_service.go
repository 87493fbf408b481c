package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/google/uuid"
)

const (
	MaxDocumentSize     = 2 * 1024 * 1024
	MaxDocumentNameLen  = 100
	PDFContentType      = "application/pdf"
	DocumentURLLifetime = time.Hour
)

var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46} // %PDF

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BlobStore is the object storage the documents live in.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*blobstore.Object, error)
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]blobstore.ObjectInfo, error)
}

// DocumentUpload is a file received from a client, not yet stored.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidateDocument checks the declared type, the size ceiling, the name
// length and the %PDF file signature.
func ValidateDocument(up *DocumentUpload) error {
	if up == nil {
		return invalidField("scheduleDocument", "is required")
	}
	if ct := strings.TrimSpace(strings.Split(up.ContentType, ";")[0]); !strings.EqualFold(ct, PDFContentType) {
		return invalidField("scheduleDocument", "only PDF files are allowed")
	}
	if len(up.Data) == 0 {
		return invalidField("scheduleDocument", "file is empty")
	}
	if len(up.Data) > MaxDocumentSize {
		return invalidField("scheduleDocument", "file size must not exceed 2MB")
	}
	if up.Filename == "" || len(up.Filename) > MaxDocumentNameLen {
		return invalidField("scheduleDocument", fmt.Sprintf("file name must be 1-%d characters", MaxDocumentNameLen))
	}
	if !bytes.HasPrefix(up.Data, pdfMagic) {
		return invalidField("scheduleDocument", "file content is not a valid PDF")
	}
	return nil
}

// StorageKey builds a collision-resistant object key under the owner's prefix.
func StorageKey(userID, filename string, now time.Time) string {
	name := unsafeKeyChars.ReplaceAllString(filename, "_")
	return fmt.Sprintf("%s/%d_%s_%s", userID, now.UnixMilli(), uuid.NewString(), name)
}

type DocumentService interface {
	Upload(ctx context.Context, userID string, up *DocumentUpload) (*models.ScheduleDocument, error)
	SignedURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
	// Discard deletes a blob and only logs a failure.
	Discard(ctx context.Context, path string)
}

type documentService struct {
	store BlobStore
	now   func() time.Time
}

func NewDocumentService(store BlobStore) DocumentService {
	return &documentService{store: store, now: time.Now}
}

func (s *documentService) Upload(ctx context.Context, userID string, up *DocumentUpload) (*models.ScheduleDocument, error) {
	if err := ValidateDocument(up); err != nil {
		return nil, err
	}

	now := s.now()
	obj, err := s.store.Put(ctx, StorageKey(userID, up.Filename, now), up.Data, PDFContentType)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	return &models.ScheduleDocument{
		Path:        obj.Path,
		Filename:    up.Filename,
		Size:        int64(len(up.Data)),
		ContentType: PDFContentType,
		URL:         obj.URL,
		UploadedAt:  now,
	}, nil
}

func (s *documentService) SignedURL(ctx context.Context, path string) (string, error) {
	url, err := s.store.SignedURL(ctx, path, DocumentURLLifetime)
	if err != nil {
		return "", fmt.Errorf("sign document url: %w", err)
	}
	return url, nil
}

func (s *documentService) Delete(ctx context.Context, path string) error {
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *documentService) Discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.store.Delete(ctx, path); err != nil {
		log.Printf("[Documents] failed to delete %s, left for the orphan sweep: %v", path, err)
	}
}
