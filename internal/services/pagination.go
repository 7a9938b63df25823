package services

import (
	"context"
	"fmt"

	"devflow/internal/config"
	"devflow/internal/models"
)

// CountFunc returns the size of the whole filtered set
type CountFunc func(ctx context.Context) (int64, error)

// FindFunc returns the window of the filtered set starting at skip
type FindFunc[T any] func(ctx context.Context, skip, limit int64) ([]T, error)

// Paginate reads one window of a listing. The count and the window are two
// independent reads, so a concurrent write may make them disagree by the
// size of that write. req must already be normalized.
func Paginate[T any](ctx context.Context, req models.PageRequest, count CountFunc, find FindFunc[T]) (*models.Page[T], error) {
	skip := req.Skip()

	total, err := count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	items, err := find(ctx, skip, int64(req.PageSize))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	if items == nil {
		items = []T{}
	}

	return &models.Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		Total:    total,
		HasNext:  total > skip+int64(len(items)),
	}, nil
}

// pager normalizes page requests with the configured sizes
type pager struct {
	defaultSize int
	maxSize     int
}

func newPager(cfg config.EngineConfig) pager {
	return pager{defaultSize: cfg.DefaultPageSize, maxSize: cfg.MaxPageSize}
}

func (p pager) normalize(req models.PageRequest) models.PageRequest {
	return req.Normalize(p.defaultSize, p.maxSize)
}

// withDefault normalizes req using size as the default page size
func (p pager) withDefault(req models.PageRequest, size int) models.PageRequest {
	return req.Normalize(size, p.maxSize)
}

// resolveSort validates a listing's sort preset at the boundary
func resolveSort(spec models.SortSpec, allowed []models.SortSpec, fallback models.SortSpec) (models.SortSpec, error) {
	resolved, err := models.ParseSortSpec(string(spec), allowed, fallback)
	if err != nil {
		return "", NewValidationError(err.Error(), nil).WithDetail("field", "sort")
	}
	return resolved, nil
}
