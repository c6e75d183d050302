package httpx

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/mocks"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/halayachts/hala-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type uploadPart struct {
	contentType string
	body        []byte
	folder      string
}

func multipartRequest(t *testing.T, part *uploadPart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if part != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="boat.png"`)
		hdr.Set("Content-Type", part.contentType)
		w, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = w.Write(part.body)
		require.NoError(t, err)
		if part.folder != "" {
			require.NoError(t, mw.WriteField("folder", part.folder))
		}
	} else {
		require.NoError(t, mw.WriteField("folder", "yachts"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/yacht", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newUploadHandlers(t *testing.T, storage ports.StorageProvider) *UploadHandlers {
	t.Helper()
	clock := data.NewFixedTimeProvider(time.UnixMilli(1700000000000))
	return &UploadHandlers{Svc: service.NewUploadService(service.UploadServiceOptions{
		Storage:      storage,
		TimeProvider: clock,
	})}
}

func TestUploadYachtImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorageProvider(ctrl)

	var stored []byte
	storage.EXPECT().
		Upload(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, obj ports.UploadObject) (string, error) {
			assert.Equal(t, "uploads/locations/1700000000000.png", obj.Key)
			assert.Equal(t, "image/png", obj.ContentType)
			b, err := io.ReadAll(obj.Body)
			require.NoError(t, err)
			stored = b
			return obj.Key, nil
		})
	storage.EXPECT().PublicURL("uploads/locations/1700000000000.png").Return("/uploads/locations/1700000000000.png")

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 4096)...)
	rec := httptest.NewRecorder()
	newUploadHandlers(t, storage).UploadYachtImage(rec, multipartRequest(t, &uploadPart{
		contentType: "image/png",
		body:        body,
		folder:      "locations",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"success":true,
		"message":"File uploaded successfully",
		"filePath":"/uploads/locations/1700000000000.png"
	}`, rec.Body.String())
	assert.Equal(t, body, stored)
}

func TestUploadYachtImage_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		part    *uploadPart
		wantMsg string
	}{
		{name: "no file", part: nil, wantMsg: "No file uploaded"},
		{
			name:    "wrong declared type",
			part:    &uploadPart{contentType: "application/pdf", body: []byte("%PDF-1.7")},
			wantMsg: "Only JPEG, PNG, and WebP images are allowed",
		},
		{
			name:    "content does not match",
			part:    &uploadPart{contentType: "image/png", body: []byte("<html><script>alert(1)</script></html>")},
			wantMsg: "Only JPEG, PNG, and WebP images are allowed",
		},
		{
			name:    "too large",
			part:    &uploadPart{contentType: "image/png", body: append(append([]byte{}, pngHeader...), make([]byte, service.MaxUploadSize)...)},
			wantMsg: "File size must be less than 10MB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			storage := mocks.NewMockStorageProvider(ctrl)

			rec := httptest.NewRecorder()
			newUploadHandlers(t, storage).UploadYachtImage(rec, multipartRequest(t, tt.part))

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["error"])
		})
	}
}
