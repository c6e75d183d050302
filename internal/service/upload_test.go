package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/mocks"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func newUploadService(t *testing.T) (*UploadService, *mocks.MockStorageProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorageProvider(ctrl)
	return NewUploadService(UploadServiceOptions{Storage: storage, TimeProvider: testClock()}), storage
}

func TestUploadService_UploadImage(t *testing.T) {
	svc, storage := newUploadService(t)
	wantKey := "uploads/locations/1746093600000.png"

	storage.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, obj ports.UploadObject) (string, error) {
			assert.Equal(t, wantKey, obj.Key)
			assert.Equal(t, "image/png", obj.ContentType)
			body, err := io.ReadAll(obj.Body)
			require.NoError(t, err)
			assert.Equal(t, pngBytes, body)
			return obj.Key, nil
		})
	storage.EXPECT().PublicURL(wantKey).Return("/" + wantKey)

	url, err := svc.UploadImage(context.Background(), UploadInput{
		Folder:      "locations",
		ContentType: "image/png",
		Size:        int64(len(pngBytes)),
		Body:        bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/locations/1746093600000.png", url)
}

func TestUploadService_NormalizesJPGAlias(t *testing.T) {
	svc, storage := newUploadService(t)
	jpeg := append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{1}, 32)...)

	storage.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, obj ports.UploadObject) (string, error) {
			assert.True(t, strings.HasPrefix(obj.Key, "uploads/yachts/"))
			assert.True(t, strings.HasSuffix(obj.Key, ".jpg"))
			assert.Equal(t, "image/jpeg", obj.ContentType)
			return obj.Key, nil
		})
	storage.EXPECT().PublicURL(gomock.Any()).Return("https://cdn.example.com/x.jpg")

	_, err := svc.UploadImage(context.Background(), UploadInput{
		ContentType: "image/jpg",
		Size:        int64(len(jpeg)),
		Body:        bytes.NewReader(jpeg),
	})
	require.NoError(t, err)
}

func TestUploadService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		in      UploadInput
		message string
	}{
		{name: "no file", in: UploadInput{ContentType: "image/png"}, message: "No file uploaded"},
		{name: "empty body", in: UploadInput{ContentType: "image/png", Body: bytes.NewReader(nil)}, message: "No file uploaded"},
		{name: "gif", in: UploadInput{ContentType: "image/gif", Body: bytes.NewReader(pngBytes)}, message: "Only JPEG, PNG, and WebP images are allowed"},
		{name: "too large", in: UploadInput{ContentType: "image/png", Size: MaxUploadSize + 1, Body: bytes.NewReader(pngBytes)}, message: "File size must be less than 10MB"},
		{name: "content mismatch", in: UploadInput{ContentType: "image/png", Size: 5, Body: strings.NewReader("hello")}, message: "Only JPEG, PNG, and WebP images are allowed"},
		{name: "bad folder", in: UploadInput{Folder: "../etc", ContentType: "image/png", Body: bytes.NewReader(pngBytes)}, message: "Folder must be yachts or locations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newUploadService(t)
			_, err := svc.UploadImage(context.Background(), tt.in)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
			assert.NotEqual(t, apperrors.ErrCodeInternal, appErr.Code)
		})
	}
}

func TestUploadService_StorageFailure(t *testing.T) {
	svc, storage := newUploadService(t)
	storage.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("", errors.New("access denied"))

	_, err := svc.UploadImage(context.Background(), UploadInput{
		ContentType: "image/png",
		Size:        int64(len(pngBytes)),
		Body:        bytes.NewReader(pngBytes),
	})
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
}
