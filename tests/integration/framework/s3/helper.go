package s3helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
)

type Helper struct {
	s3 *s3.Client
}

func NewHelper(s3Client *s3.Client) *Helper {
	if s3Client == nil {
		panic("s3 client is required")
	}

	return &Helper{
		s3: s3Client,
	}
}

// RequireDocument checks that url points into the bucket and the object exists.
func (h *Helper) RequireDocument(t *testing.T, url string) []byte {
	t.Helper()

	key, ok := h.s3.KeyFromURL(url)
	require.True(t, ok, "url %q does not point into bucket %s", url, h.s3.Bucket())

	data, err := h.s3.GetObject(t.Context(), key)
	require.NoError(t, err, "failed to get file from S3")
	return data
}

func (h *Helper) RequireNoDocument(t *testing.T, url string) {
	t.Helper()

	key, ok := h.s3.KeyFromURL(url)
	require.True(t, ok, "url %q does not point into bucket %s", url, h.s3.Bucket())

	_, err := h.s3.GetObject(t.Context(), key)
	require.Error(t, err, "expected error when getting non-existing file from S3")
}

func (h *Helper) RequireEventuallyNoDocument(t *testing.T, url string) {
	t.Helper()

	key, ok := h.s3.KeyFromURL(url)
	require.True(t, ok, "url %q does not point into bucket %s", url, h.s3.Bucket())

	require.Eventually(t, func() bool {
		_, err := h.s3.GetObject(t.Context(), key)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond, "file still exists in S3")
}
