package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/halayachts/hala-api/internal/data"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/ports"
)

// MaxUploadSize is the largest accepted image in bytes.
const MaxUploadSize int64 = 10 << 20

// Upload folders.
const (
	FolderYachts    = "yachts"
	FolderLocations = "locations"
)

const (
	msgNoFile          = "No file uploaded"
	msgUnsupportedType = "Only JPEG, PNG, and WebP images are allowed"
	msgFileTooLarge    = "File size must be less than 10MB"
	msgInvalidFolder   = "Folder must be yachts or locations"

	// sniffLen is how much of the body is inspected to confirm the declared type.
	sniffLen = 3072
)

// imageExtensions maps accepted content types to the stored file extension.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// UploadInput is a single image posted by the admin UI.
type UploadInput struct {
	Folder      string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadServiceOptions groups dependencies for UploadService.
type UploadServiceOptions struct {
	Storage      ports.StorageProvider // Required
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// UploadService validates images and hands them to the storage provider.
type UploadService struct {
	storage      ports.StorageProvider
	timeProvider data.TimeProvider
	logger       *slog.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(opts UploadServiceOptions) *UploadService {
	if opts.Storage == nil {
		panic("UploadService requires Storage")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	return &UploadService{
		storage:      opts.Storage,
		timeProvider: tp,
		logger:       logger.With("component", "upload_service"),
	}
}

// UploadImage stores an image under uploads/<folder>/<unix-millis>.<ext> and
// returns its public URL.
func (s *UploadService) UploadImage(ctx context.Context, in UploadInput) (string, error) {
	if in.Body == nil {
		return "", apperrors.BadRequest(msgNoFile)
	}
	folder, err := uploadFolder(in.Folder)
	if err != nil {
		return "", err
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperrors.BadRequest(msgUnsupportedType)
	}
	if in.Size > MaxUploadSize {
		return "", apperrors.BadRequest(msgFileTooLarge)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Failed to read uploaded file")
	}
	head = head[:n]
	if n == 0 {
		return "", apperrors.BadRequest(msgNoFile)
	}
	if detected := mimetype.Detect(head); !isAllowedImage(detected) {
		s.logger.WarnContext(ctx, "upload content does not match declared type",
			"declared", contentType,
			"detected", detected.String(),
		)
		return "", apperrors.BadRequest(msgUnsupportedType)
	}

	key := fmt.Sprintf("uploads/%s/%d.%s", folder, s.timeProvider.Now().UnixMilli(), ext)
	stored, err := s.storage.Upload(ctx, ports.UploadObject{
		Key:         key,
		Body:        io.MultiReader(bytes.NewReader(head), in.Body),
		Size:        in.Size,
		ContentType: imageContentType(contentType),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "store upload failed", "key", key, "error", err)
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to upload file")
	}

	s.logger.InfoContext(ctx, "image uploaded", "key", stored, "size", in.Size)
	return s.storage.PublicURL(stored), nil
}

func uploadFolder(folder string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(folder)) {
	case "", FolderYachts:
		return FolderYachts, nil
	case FolderLocations:
		return FolderLocations, nil
	default:
		return "", apperrors.ValidationField("folder", msgInvalidFolder)
	}
}

func isAllowedImage(m *mimetype.MIME) bool {
	return m.Is("image/jpeg") || m.Is("image/png") || m.Is("image/webp")
}

// imageContentType normalizes the non-standard image/jpg alias.
func imageContentType(ct string) string {
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}
