package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/i18nx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/sanitizex"
)

var (
	tracer = otel.Tracer("souqly/internal/adapters/services/s3")
	logger = otelslog.NewLogger("souqly/internal/adapters/services/s3")
)

const (
	MaxDocumentSize   = 10 << 20
	SellerCardsFolder = "seller_cards"
	// TempOwner is the key segment for documents uploaded before the account exists.
	TempOwner = "temp"
)

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

var (
	ErrDocumentTooLarge    = errorx.NewPayloadTooLarge().WithArgs(map[string]any{"MaxMB": MaxDocumentSize >> 20})
	ErrUnsupportedDocument = errorx.NewUnsupportedMediaType()
	ErrUploadFailed        = errorx.NewDependencyFailure().WithKey(i18nx.KeyUploadFailed)
)

// Document is an uploaded identity document as received from the client.
type Document struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type DocumentStore struct {
	tracer trace.Tracer
	logger *slog.Logger
	client *Client
	now    func() time.Time
}

type DocumentStoreArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Client *Client
	Now    func() time.Time
}

func NewDocumentStore(args DocumentStoreArgs) *DocumentStore {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Now == nil {
		args.Now = time.Now
	}
	return &DocumentStore{
		tracer: args.Tracer,
		logger: args.Logger,
		client: args.Client,
		now:    args.Now,
	}
}

// UploadSellerDocument validates size and type, stores the document under the seller cards folder
// and returns its public URL. An empty ownerID files it under TempOwner.
func (s *DocumentStore) UploadSellerDocument(ctx context.Context, ownerID string, doc Document) (string, error) {
	const op = "s3.DocumentStore.UploadSellerDocument"
	ctx, span := s.tracer.Start(ctx, "DocumentStore.UploadSellerDocument",
		trace.WithAttributes(attribute.String("document.owner", ownerID)))
	defer span.End()

	data, err := io.ReadAll(io.LimitReader(doc.Body, MaxDocumentSize+1))
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to read document")
		return "", errorx.Wrap(errorx.NewInvalidRequest().WithCause(err), op)
	}

	contentType, err := CheckDocument(data, doc.ContentType)
	if err != nil {
		otelx.RecordSpanError(span, err, "document rejected")
		return "", errorx.Wrap(err, op)
	}

	key := DocumentKey(ownerID, doc.Name, s.now())
	otelx.SetSpanAttrs(span, map[string]any{
		"document.key":          key,
		"document.size":         len(data),
		"document.content_type": contentType,
	})

	if err := s.client.UploadFile(ctx, key, bytes.NewReader(data), contentType); err != nil {
		otelx.RecordSpanError(span, err, "failed to upload document")
		return "", errorx.Wrap(ErrUploadFailed.WithCause(err), op)
	}

	s.logger.InfoContext(ctx, "seller document stored", slog.String("key", key))
	return s.client.ObjectURL(key), nil
}

// DeleteDocument removes a document previously returned by UploadSellerDocument.
// URLs this store did not produce are ignored.
func (s *DocumentStore) DeleteDocument(ctx context.Context, url string) error {
	const op = "s3.DocumentStore.DeleteDocument"
	ctx, span := s.tracer.Start(ctx, "DocumentStore.DeleteDocument")
	defer span.End()

	key, ok := s.client.KeyFromURL(url)
	if !ok {
		return nil
	}
	if err := s.client.DeleteFile(ctx, key); err != nil {
		otelx.RecordSpanError(span, err, "failed to delete document")
		return errorx.Wrap(err, op)
	}
	return nil
}

// DocumentKey is seller_cards/<owner>/<unix millis>-<file name>.
func DocumentKey(ownerID, name string, now time.Time) string {
	if ownerID == "" {
		ownerID = TempOwner
	}
	return SellerCardsFolder + "/" + ownerID + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + sanitizex.FileName(name)
}

// CheckDocument enforces the size limit and that both the declared and the sniffed content types
// are allowed. It returns the content type to store the object with.
func CheckDocument(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", ErrUnsupportedDocument.WithCause(fmt.Errorf("empty document"))
	}
	if len(data) > MaxDocumentSize {
		return "", ErrDocumentTooLarge
	}

	declared = normalizeContentType(declared)
	if declared != "" && !allowedDocumentTypes[declared] {
		return "", ErrUnsupportedDocument.WithCause(fmt.Errorf("declared content type %q", declared))
	}

	sniffed := normalizeContentType(http.DetectContentType(data))
	if !allowedDocumentTypes[sniffed] {
		return "", ErrUnsupportedDocument.WithCause(fmt.Errorf("detected content type %q", sniffed))
	}
	return sniffed, nil
}

func normalizeContentType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
