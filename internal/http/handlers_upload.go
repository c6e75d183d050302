package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/service"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// uploadFormOverhead leaves room for multipart boundaries and the folder field.
const uploadFormOverhead = 1 << 20

// UploadServiceInterface defines the image upload operation used by the handler.
type UploadServiceInterface interface {
	UploadImage(ctx context.Context, in service.UploadInput) (string, error)
}

// UploadHandlers serves admin image uploads.
type UploadHandlers struct {
	Svc    UploadServiceInterface
	Errors ErrorOptions
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
}

// UploadYachtImage stores the multipart "file" field.
// POST /api/upload/yacht.
func (h *UploadHandlers) UploadYachtImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+uploadFormOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteAppError(w, apperrors.BadRequest("File size must be less than 10MB"), h.Errors)
			return
		}
		WriteAppError(w, apperrors.BadRequest("No file uploaded"), h.Errors)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAppError(w, apperrors.BadRequest("No file uploaded"), h.Errors)
		return
	}
	defer file.Close()

	path, err := h.Svc.UploadImage(r.Context(), service.UploadInput{
		Folder:      r.FormValue("folder"),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	WriteJSON(w, http.StatusOK, uploadResponse{Success: true, Message: "File uploaded successfully", FilePath: path})
}
