package s3

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
)

func TestDocumentKey(t *testing.T) {
	now := time.UnixMilli(1735689600123)

	tests := []struct {
		name  string
		owner string
		file  string
		want  string
	}{
		{
			name:  "owner folder",
			owner: "3f0c1a8e-4a4e-4d8b-9a7a-0d9c6c1f2b11",
			file:  "id.pdf",
			want:  "seller_cards/3f0c1a8e-4a4e-4d8b-9a7a-0d9c6c1f2b11/1735689600123-id.pdf",
		},
		{
			name: "no owner goes to temp",
			file: "id.pdf",
			want: "seller_cards/temp/1735689600123-id.pdf",
		},
		{
			name:  "spaces become underscores",
			owner: "abc",
			file:  "my national id.png",
			want:  "seller_cards/abc/1735689600123-my_national_id.png",
		},
		{
			name:  "directories are stripped",
			owner: "abc",
			file:  "../../etc/passwd",
			want:  "seller_cards/abc/1735689600123-passwd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentKey(tt.owner, tt.file, now))
		})
	}
}

func TestCheckDocument(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared string
		want     string
		wantErr  error
	}{
		{name: "pdf", data: pdfBytes, declared: "application/pdf", want: "application/pdf"},
		{name: "png without declared type", data: pngBytes, want: "image/png"},
		{name: "declared type with params", data: pdfBytes, declared: "application/pdf; name=id.pdf", want: "application/pdf"},
		{name: "empty", data: nil, declared: "application/pdf", wantErr: ErrUnsupportedDocument},
		{name: "declared text", data: pdfBytes, declared: "text/plain", wantErr: ErrUnsupportedDocument},
		{name: "text posing as pdf", data: []byte("hello world"), declared: "application/pdf", wantErr: ErrUnsupportedDocument},
		{
			name:     "too large",
			data:     append(append([]byte{}, pdfBytes...), make([]byte, MaxDocumentSize)...),
			declared: "application/pdf",
			wantErr:  ErrDocumentTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckDocument(tt.data, tt.declared)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ObjectURLRoundTrip(t *testing.T) {
	c := &Client{bucket: "souqly", publicBaseURL: "https://cdn.example.com"}

	url := c.ObjectURL("seller_cards/abc/1-id.pdf")
	assert.Equal(t, "https://cdn.example.com/souqly/seller_cards/abc/1-id.pdf", url)

	key, ok := c.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "seller_cards/abc/1-id.pdf", key)

	_, ok = c.KeyFromURL("https://cdn.example.com/other/seller_cards/abc/1-id.pdf")
	assert.False(t, ok)
	_, ok = c.KeyFromURL("https://res.cloudinary.com/souqly/seller_cards/abc/1-id.pdf")
	assert.False(t, ok)
}

func TestDocumentStore_UploadRejectsBeforeStorage(t *testing.T) {
	// A nil client panics if reached, so a rejected document must never get that far.
	store := NewDocumentStore(DocumentStoreArgs{})

	_, err := store.UploadSellerDocument(t.Context(), "", Document{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Body:        bytes.NewReader([]byte("plain text")),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDocument))
}
