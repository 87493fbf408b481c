package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(pdfUpload("schedule.pdf")))

	notPDF := pdfUpload("schedule.pdf")
	notPDF.Data = []byte("PK\x03\x04 zip pretending")
	assert.True(t, IsValidation(ValidateDocument(notPDF)))

	wrongType := pdfUpload("schedule.pdf")
	wrongType.ContentType = "image/png"
	assert.True(t, IsValidation(ValidateDocument(wrongType)))

	withParams := pdfUpload("schedule.pdf")
	withParams.ContentType = "application/pdf; charset=binary"
	assert.NoError(t, ValidateDocument(withParams))

	longName := pdfUpload(strings.Repeat("a", 97) + ".pdf")
	assert.Error(t, ValidateDocument(longName))

	empty := pdfUpload("schedule.pdf")
	empty.Data = nil
	assert.Error(t, ValidateDocument(empty))

	assert.Error(t, ValidateDocument(nil))
}

func TestValidateDocument_SizeCeiling(t *testing.T) {
	atLimit := pdfUpload("big.pdf")
	atLimit.Data = append([]byte("%PDF"), bytes.Repeat([]byte{'x'}, MaxDocumentSize-4)...)
	assert.NoError(t, ValidateDocument(atLimit))

	over := pdfUpload("big.pdf")
	over.Data = append(atLimit.Data, 'x')
	err := ValidateDocument(over)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "2MB")
}

func TestStorageKey(t *testing.T) {
	at := time.UnixMilli(1767225600000)
	key := StorageKey("user-1", "my schedule (v2).pdf", at)

	assert.True(t, strings.HasPrefix(key, "user-1/1767225600000_"))
	assert.True(t, strings.HasSuffix(key, "_my_schedule_v2_.pdf"))
	assert.NotEqual(t, key, StorageKey("user-1", "my schedule (v2).pdf", at))
}

func TestDocumentService_UploadAndDelete(t *testing.T) {
	store := blobstore.NewMemoryStore("test")
	svc := NewDocumentService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", pdfUpload("schedule.pdf"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Path, "user-1/"))
	assert.Equal(t, "schedule.pdf", doc.Filename)
	assert.Equal(t, PDFContentType, doc.ContentType)
	assert.NotEmpty(t, doc.URL)

	_, ok := store.Get(doc.Path)
	assert.True(t, ok)

	url, err := svc.SignedURL(ctx, doc.Path)
	require.NoError(t, err)
	assert.Contains(t, url, "expires=")

	require.NoError(t, svc.Delete(ctx, doc.Path))
	_, ok = store.Get(doc.Path)
	assert.False(t, ok)

	assert.Error(t, svc.Delete(ctx, doc.Path))
	svc.Discard(ctx, doc.Path)
}

func TestDocumentService_RejectsInvalidWithoutStoring(t *testing.T) {
	store := blobstore.NewMemoryStore("test")
	svc := NewDocumentService(store)

	bad := pdfUpload("fake.pdf")
	bad.Data = []byte("GIF89a")
	_, err := svc.Upload(context.Background(), "user-1", bad)
	assert.True(t, IsValidation(err))

	objs, _ := store.List(context.Background(), "")
	assert.Empty(t, objs)
}
