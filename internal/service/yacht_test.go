package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestYachtService_CreateDerivesSlug(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockYachtRepository(ctrl)
	svc := NewYachtService(YachtServiceOptions{Repo: repo})

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateYachtRequest) (*model.Yacht, error) {
			assert.Equal(t, "sea-breeze-88", req.Slug)
			assert.Equal(t, model.YachtStatusPublished, req.Status)
			y := req.Build(7)
			return &y, nil
		})

	y, err := svc.Create(context.Background(), &model.CreateYachtRequest{Title: " Sea Breeze 88 "})
	require.NoError(t, err)
	assert.Equal(t, int64(7), y.ID)
	assert.Equal(t, "7", y.YachtID)
}

func TestYachtService_CreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		code    apperrors.ErrorCode
		message string
	}{
		{name: "slug taken", repoErr: data.ErrYachtSlugExists, code: apperrors.ErrCodeConflict, message: "Yacht with this slug already exists"},
		{name: "id taken", repoErr: data.ErrYachtIDExists, code: apperrors.ErrCodeConflict, message: "Yacht with this id already exists"},
		{name: "store failure", repoErr: errors.New("tx aborted"), code: apperrors.ErrCodeInternal, message: "Failed to create yacht"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockYachtRepository(ctrl)
			svc := NewYachtService(YachtServiceOptions{Repo: repo})
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, tt.repoErr)

			_, err := svc.Create(context.Background(), &model.CreateYachtRequest{Title: "Azure Dream"})
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestYachtService_CreateRequiresTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewYachtService(YachtServiceOptions{Repo: mocks.NewMockYachtRepository(ctrl)})

	_, err := svc.Create(context.Background(), &model.CreateYachtRequest{Slug: "azure"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
	assert.Equal(t, "Title and slug are required", appErr.Message)
}

func TestYachtService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockYachtRepository(ctrl)
	svc := NewYachtService(YachtServiceOptions{Repo: repo})

	repo.EXPECT().List(gomock.Any()).Return(nil, nil)
	yachts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, yachts)
	assert.Empty(t, yachts)

	repo.EXPECT().List(gomock.Any()).Return(nil, errors.New("down"))
	_, err = svc.List(context.Background())
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok, nil
}

func TestYachtService_ListReadsThroughCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockYachtRepository(ctrl)
	cache := newMemoryCache()
	svc := NewYachtService(YachtServiceOptions{Repo: repo, Cache: cache, CacheTTL: time.Minute})

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := []model.Yacht{{
		ID:         3,
		YachtID:    "3",
		Title:      "Azure Dream",
		Slug:       "azure-dream",
		Slugs:      []string{"azure"},
		Status:     model.YachtStatusPublished,
		Attributes: map[string]any{"length": "38m"},
		CreatedAt:  created,
		UpdatedAt:  created,
	}}
	repo.EXPECT().List(gomock.Any()).Return(stored, nil).Times(1)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, stored, first)
	assert.Equal(t, stored, second)
	assert.Equal(t, 1, cache.sets)
}

func TestYachtService_CreateInvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockYachtRepository(ctrl)
	cache := newMemoryCache()
	svc := NewYachtService(YachtServiceOptions{Repo: repo, Cache: cache, CacheTTL: time.Minute})

	repo.EXPECT().List(gomock.Any()).Return([]model.Yacht{{ID: 1, Title: "One", Slug: "one"}}, nil)
	_, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Contains(t, cache.entries, catalogCacheKey)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateYachtRequest) (*model.Yacht, error) {
			y := req.Build(2)
			return &y, nil
		})
	_, err = svc.Create(context.Background(), &model.CreateYachtRequest{Title: "Two"})
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, catalogCacheKey)
}

func TestYachtService_ListIgnoresCacheFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockYachtRepository(ctrl)
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	svc := NewYachtService(YachtServiceOptions{Repo: repo, Cache: cache})

	repo.EXPECT().List(gomock.Any()).Return([]model.Yacht{{ID: 1, Title: "One", Slug: "one"}}, nil)
	yachts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, yachts, 1)
}
