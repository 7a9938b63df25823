package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow/internal/models"
)

func TestRecommend_EmptyWithoutInteractions(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "newcomer")
	f.question(t, "author", "Some go question", "go")

	page, err := f.sc.RecommendationService.Recommend(f.ctx, &RecommendRequest{ClerkID: "newcomer"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
	assert.False(t, page.HasNext)
}

func TestRecommend_SharedTagsFromOtherAuthors(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "reader")

	viewed := f.question(t, "author", "Goroutine leak", "go")
	related := f.question(t, "author", "Go channel deadlock", "go", "channels")
	f.question(t, "author", "Python decorators", "python")

	_, err := f.sc.QuestionService.ViewQuestion(f.ctx, &ViewQuestionRequest{QuestionID: viewed.ID.String(), ViewerID: "reader"})
	require.NoError(t, err)
	own := f.question(t, "reader", "My own go question", "go")

	page, err := f.sc.RecommendationService.Recommend(f.ctx, &RecommendRequest{ClerkID: "reader"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	ids := []models.ID{}
	for _, q := range page.Items {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []models.ID{related.ID, viewed.ID}, ids)
	assert.NotContains(t, ids, own.ID)

	narrowed, err := f.sc.RecommendationService.Recommend(f.ctx, &RecommendRequest{ClerkID: "reader", Search: "deadlock"})
	require.NoError(t, err)
	require.Len(t, narrowed.Items, 1)
	assert.Equal(t, related.ID, narrowed.Items[0].ID)
}

func TestRecommend_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.sc.RecommendationService.Recommend(f.ctx, &RecommendRequest{})
	assert.True(t, IsUnauthenticatedError(err))

	_, err = f.sc.RecommendationService.Recommend(f.ctx, &RecommendRequest{ClerkID: "ghost"})
	assert.True(t, IsNotFoundError(err))
}
