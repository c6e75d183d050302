package httpx

import (
	"context"
	"net/http"

	"github.com/halayachts/hala-api/internal/domain/model"
)

// YachtServiceInterface defines the catalog operations used by the handlers.
type YachtServiceInterface interface {
	List(ctx context.Context) ([]model.Yacht, error)
	Create(ctx context.Context, req *model.CreateYachtRequest) (*model.Yacht, error)
}

// YachtHandlers serves the yacht catalog.
type YachtHandlers struct {
	Svc    YachtServiceInterface
	Errors ErrorOptions
}

// List returns the whole catalog as a bare JSON array.
// GET /api/yachts.
func (h *YachtHandlers) List(w http.ResponseWriter, r *http.Request) {
	yachts, err := h.Svc.List(r.Context())
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	if yachts == nil {
		yachts = []model.Yacht{}
	}
	w.Header().Set("Cache-Control", "no-store, must-revalidate")
	WriteJSON(w, http.StatusOK, yachts)
}

type yachtCreated struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Yacht   *model.Yacht `json:"yacht"`
}

// Create adds a yacht. Unknown fields are kept as attributes.
// POST /api/yachts.
func (h *YachtHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateYachtRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	y, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	WriteJSON(w, http.StatusCreated, yachtCreated{Success: true, Message: "Yacht created successfully", Yacht: y})
}
