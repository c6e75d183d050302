package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/ports"
)

const catalogCacheKey = "catalog:yachts"

// YachtServiceOptions groups dependencies for YachtService.
type YachtServiceOptions struct {
	Repo ports.YachtRepository // Required
	// Cache enables a read-through cache of the full catalog. Optional.
	Cache    ports.CacheRepository
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// YachtService reads and extends the yacht catalog.
type YachtService struct {
	repo     ports.YachtRepository
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// cachedYacht drops model.Yacht's flattening MarshalJSON so cache entries
// decode back into the same struct.
type cachedYacht model.Yacht

// NewYachtService constructs a YachtService.
func NewYachtService(opts YachtServiceOptions) *YachtService {
	if opts.Repo == nil {
		panic("YachtService requires Repo")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &YachtService{
		repo:     opts.Repo,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.With("component", "yacht_service"),
	}
}

// List returns every yacht in the catalog. Cache failures fall through to the
// repository.
func (s *YachtService) List(ctx context.Context) ([]model.Yacht, error) {
	if yachts, ok := s.cachedCatalog(ctx); ok {
		return yachts, nil
	}

	yachts, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to fetch yachts")
	}
	if yachts == nil {
		yachts = []model.Yacht{}
	}
	s.storeCatalog(ctx, yachts)
	return yachts, nil
}

func (s *YachtService) cachedCatalog(ctx context.Context) ([]model.Yacht, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, catalogCacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache read failed", "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var entries []cachedYacht
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.WarnContext(ctx, "catalog cache entry unreadable", "error", err)
		return nil, false
	}
	yachts := make([]model.Yacht, len(entries))
	for i := range entries {
		yachts[i] = model.Yacht(entries[i])
	}
	return yachts, true
}

func (s *YachtService) storeCatalog(ctx context.Context, yachts []model.Yacht) {
	if s.cache == nil {
		return
	}
	entries := make([]cachedYacht, len(yachts))
	for i := range yachts {
		entries[i] = cachedYacht(yachts[i])
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache encode failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, catalogCacheKey, raw, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed", "error", err)
	}
}

func (s *YachtService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
	}
}

// Create adds a yacht. The slug is derived from the title when absent and
// must not collide with another yacht's slug or alias.
func (s *YachtService) Create(ctx context.Context, req *model.CreateYachtRequest) (*model.Yacht, error) {
	if err := req.Prepare(); err != nil {
		return nil, badRequestFrom(err)
	}

	y, err := s.repo.Create(ctx, req)
	switch {
	case errors.Is(err, data.ErrYachtSlugExists):
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "Yacht with this slug already exists")
	case errors.Is(err, data.ErrYachtIDExists):
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "Yacht with this id already exists")
	case err != nil:
		s.logger.ErrorContext(ctx, "create yacht failed", "slug", req.Slug, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to create yacht")
	}

	s.invalidateCatalog(ctx)
	s.logger.InfoContext(ctx, "yacht created", "id", y.ID, "slug", y.Slug)
	return y, nil
}
