package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYachtList(t *testing.T) {
	h := &YachtHandlers{Svc: &fakeYachts{
		listFn: func(context.Context) ([]model.Yacht, error) { return nil, nil },
	}}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/yachts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestYachtCreate(t *testing.T) {
	var got *model.CreateYachtRequest
	h := &YachtHandlers{Svc: &fakeYachts{
		createFn: func(_ context.Context, req *model.CreateYachtRequest) (*model.Yacht, error) {
			got = req
			require.NoError(t, req.Prepare())
			y := req.Build(3)
			return &y, nil
		},
	}}

	rec := httptest.NewRecorder()
	h.Create(rec, jsonRequest(t, http.MethodPost, "/api/yachts", `{"title":"Azure Dream","length":"35m","guests":12}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, "Azure Dream", got.Title)
	assert.Equal(t, "35m", got.Attributes["length"])

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Yacht created successfully", body["message"])
	yacht, ok := body["yacht"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "azure-dream", yacht["slug"])
	assert.Equal(t, "35m", yacht["length"])
}

func TestYachtCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "slug taken",
			body:     `{"title":"Azure Dream"}`,
			svcErr:   apperrors.Conflict("Yacht with this slug already exists"),
			wantCode: http.StatusConflict,
			wantMsg:  "Yacht with this slug already exists",
		},
		{
			name:     "missing title",
			body:     `{}`,
			svcErr:   apperrors.BadRequest("Title and slug are required"),
			wantCode: http.StatusBadRequest,
			wantMsg:  "Title and slug are required",
		},
		{
			name:     "bad id",
			body:     `{"title":"Azure Dream","id":"abc"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Validation error: id must be a positive integer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &YachtHandlers{Svc: &fakeYachts{
				createFn: func(context.Context, *model.CreateYachtRequest) (*model.Yacht, error) {
					return nil, tt.svcErr
				},
			}}
			rec := httptest.NewRecorder()
			h.Create(rec, jsonRequest(t, http.MethodPost, "/api/yachts", tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["error"])
		})
	}
}
