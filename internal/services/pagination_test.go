package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow/internal/models"
)

func sliceSource(items []int) (CountFunc, FindFunc[int]) {
	count := func(context.Context) (int64, error) { return int64(len(items)), nil }
	find := func(_ context.Context, skip, limit int64) ([]int, error) {
		if skip >= int64(len(items)) {
			return nil, nil
		}
		end := skip + limit
		if end > int64(len(items)) {
			end = int64(len(items))
		}
		return items[skip:end], nil
	}
	return count, find
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	count, find := sliceSource(items)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.PageRequest
		want    []int
		hasNext bool
	}{
		{"first page", models.PageRequest{Page: 1, PageSize: 2}, []int{1, 2}, true},
		{"middle page", models.PageRequest{Page: 2, PageSize: 2}, []int{3, 4}, true},
		{"last page", models.PageRequest{Page: 3, PageSize: 2}, []int{5}, false},
		{"exact fit", models.PageRequest{Page: 1, PageSize: 5}, []int{1, 2, 3, 4, 5}, false},
		{"past the end", models.PageRequest{Page: 9, PageSize: 2}, []int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paginate(ctx, tt.req, count, find)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Items)
			assert.Equal(t, tt.hasNext, page.HasNext)
			assert.Equal(t, int64(5), page.Total)
		})
	}
}

func TestPaginate_NormalizedRequest(t *testing.T) {
	count, find := sliceSource([]int{1, 2, 3})
	p := newPager(testConfig().Engine)

	req := p.normalize(models.PageRequest{Page: 0, PageSize: 0})
	assert.Equal(t, models.PageRequest{Page: 1, PageSize: 20}, req)
	assert.Equal(t, 100, p.normalize(models.PageRequest{Page: 1, PageSize: 1000}).PageSize)

	page, err := Paginate(context.Background(), req, count, find)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, page.Items)
	assert.False(t, page.HasNext)
}

func TestPaginate_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, find := sliceSource(nil)

	_, err := Paginate(context.Background(), models.PageRequest{Page: 1, PageSize: 1},
		func(context.Context) (int64, error) { return 0, boom }, find)
	assert.ErrorIs(t, err, boom)
}
