package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

func TestQuestionRepository_SetVoteKeepsSetsDisjoint(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	q := &models.Question{Title: "How do channels work?", Author: models.NewID()}
	require.NoError(t, store.Questions.Create(ctx, q))
	voter := models.NewID()

	sets, err := store.Questions.SetVote(ctx, q.ID, voter, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{voter}, sets.Upvotes)
	assert.Empty(t, sets.Downvotes)
	assert.Equal(t, q.Author, sets.Author)

	sets, err = store.Questions.SetVote(ctx, q.ID, voter, models.VoteDown)
	require.NoError(t, err)
	assert.Empty(t, sets.Upvotes)
	assert.Equal(t, []models.ID{voter}, sets.Downvotes)

	sets, err = store.Questions.SetVote(ctx, q.ID, voter, models.VoteNone)
	require.NoError(t, err)
	assert.Empty(t, sets.Upvotes)
	assert.Empty(t, sets.Downvotes)

	_, err = store.Questions.SetVote(ctx, models.NewID(), voter, models.VoteUp)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestQuestionRepository_FindWindowAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var ids []models.ID
	for i := 0; i < 5; i++ {
		q := &models.Question{Title: "question", Views: int64(i % 2)}
		require.NoError(t, store.Questions.Create(ctx, q))
		ids = append(ids, q.ID)
	}

	found, err := store.Questions.Find(ctx, repositories.QuestionQuery{}, repositories.FindOptions{
		Sort: models.SortMostViewed, Skip: 0, Limit: 3,
	})
	require.NoError(t, err)
	require.Len(t, found, 3)
	// views 1 first (ids[1], ids[3]) then ties broken by insertion order
	assert.Equal(t, ids[1], found[0].ID)
	assert.Equal(t, ids[3], found[1].ID)
	assert.Equal(t, ids[0], found[2].ID)

	found, err = store.Questions.Find(ctx, repositories.QuestionQuery{}, repositories.FindOptions{
		Sort: models.SortNewest, Skip: 4, Limit: 3,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ids[0], found[0].ID)

	found, err = store.Questions.Find(ctx, repositories.QuestionQuery{}, repositories.FindOptions{Skip: 10, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestQuestionRepository_RestrictIDsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Questions.Create(ctx, &models.Question{Title: "anything"}))

	n, err := store.Questions.Count(ctx, repositories.QuestionQuery{RestrictIDs: true})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTagRepository_AttachQuestionIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := models.NewID()

	first, err := store.Tags.AttachQuestion(ctx, "Go", q)
	require.NoError(t, err)
	second, err := store.Tags.AttachQuestion(ctx, "GO", q)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Go", second.Name)
	assert.Equal(t, []models.ID{q}, second.Questions)
}

func TestUserRepository_ToggleSaved(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	u := &models.User{ClerkID: "user_1", Username: "gopher"}
	require.NoError(t, store.Users.Create(ctx, u))
	q := models.NewID()

	saved, err := store.Users.ToggleSaved(ctx, u.ID, q)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = store.Users.ToggleSaved(ctx, u.ID, q)
	require.NoError(t, err)
	assert.False(t, saved)

	got, err := store.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Saved)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Users.Create(ctx, &models.User{ClerkID: "a", Username: "gopher"}))

	err := store.Users.Create(ctx, &models.User{ClerkID: "b", Username: "Gopher"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestInteractionRepository_RecordViewOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user, question := models.NewID(), models.NewID()

	created, err := store.Interactions.RecordView(ctx, user, question, nil)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Interactions.RecordView(ctx, user, question, nil)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := store.Interactions.Count(ctx, repositories.InteractionQuery{User: user, Action: models.ActionView})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestInteractionRepository_TopTags(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := models.NewID()
	goTag, dbTag := models.NewID(), models.NewID()

	require.NoError(t, store.Interactions.Create(ctx, &models.Interaction{User: user, Action: models.ActionAskQuestion, Tags: []models.ID{goTag, dbTag}}))
	require.NoError(t, store.Interactions.Create(ctx, &models.Interaction{User: user, Action: models.ActionAskQuestion, Tags: []models.ID{goTag}}))

	top, err := store.Interactions.TopTags(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, goTag, top[0].ID)
	assert.Equal(t, int64(2), top[0].Count)

	distinct, err := store.Interactions.DistinctTags(ctx, user)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ID{goTag, dbTag}, distinct)
}
