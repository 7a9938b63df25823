package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow/internal/models"
)

func TestNextState(t *testing.T) {
	tests := []struct {
		from models.VoteState
		dir  models.VoteDirection
		want models.VoteState
	}{
		{models.VoteNone, models.DirectionUp, models.VoteUp},
		{models.VoteUp, models.DirectionUp, models.VoteNone},
		{models.VoteDown, models.DirectionUp, models.VoteUp},
		{models.VoteNone, models.DirectionDown, models.VoteDown},
		{models.VoteDown, models.DirectionDown, models.VoteNone},
		{models.VoteUp, models.DirectionDown, models.VoteDown},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"_"+string(tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.want, nextState(tt.from, tt.dir))
		})
	}
}

func TestReputationDeltas(t *testing.T) {
	tests := []struct {
		from, to      models.VoteState
		voter, author int64
	}{
		{models.VoteNone, models.VoteUp, 1, 10},
		{models.VoteUp, models.VoteNone, -1, -10},
		{models.VoteNone, models.VoteDown, 1, -10},
		{models.VoteDown, models.VoteNone, -1, 10},
		{models.VoteDown, models.VoteUp, 0, 20},
		{models.VoteUp, models.VoteDown, 0, -20},
	}
	for _, tt := range tests {
		voter, author := reputationDeltas(tt.from, tt.to)
		assert.Equal(t, tt.voter, voter, "%s -> %s voter", tt.from, tt.to)
		assert.Equal(t, tt.author, author, "%s -> %s author", tt.from, tt.to)
	}
}

func TestReputationDeltas_CyclesNetZero(t *testing.T) {
	cycle := []models.VoteState{models.VoteNone, models.VoteUp, models.VoteDown, models.VoteNone, models.VoteDown, models.VoteUp, models.VoteNone}
	var voterSum, authorSum int64
	for i := 1; i < len(cycle); i++ {
		v, a := reputationDeltas(cycle[i-1], cycle[i])
		voterSum += v
		authorSum += a
	}
	assert.Zero(t, voterSum)
	assert.Zero(t, authorSum)
}

func TestVote_UpThenDownScenario(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "voter")
	q := f.question(t, "author", "How do goroutines work?")
	authorStart := f.reputation(t, "author")

	res, err := f.sc.VoteService.Vote(f.ctx, &VoteRequest{
		Kind: models.VoteOnQuestion, ItemID: q.ID.String(), VoterID: "voter",
		Direction: models.DirectionUp, Path: "/question/" + q.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.VoteUp, res.State)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, int64(1), f.reputation(t, "voter"))
	assert.Equal(t, authorStart+10, f.reputation(t, "author"))

	res, err = f.sc.VoteService.Vote(f.ctx, &VoteRequest{
		Kind: models.VoteOnQuestion, ItemID: q.ID.String(), VoterID: "voter",
		Direction: models.DirectionDown, HasUpvoted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VoteDown, res.State)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
	assert.Equal(t, int64(1), f.reputation(t, "voter"))
	assert.Equal(t, authorStart-10, f.reputation(t, "author"))

	stored, err := f.sc.QuestionService.GetQuestion(f.ctx, q.ID.String())
	require.NoError(t, err)
	assert.Empty(t, stored.Upvotes)
	assert.Len(t, stored.Downvotes, 1)

	assert.Contains(t, f.hook.Paths(), "/question/"+q.ID.String())
}

func TestVote_ToggleTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "voter")
	q := f.question(t, "author", "Toggle test question")
	authorStart := f.reputation(t, "author")

	req := &VoteRequest{Kind: models.VoteOnQuestion, ItemID: q.ID.String(), VoterID: "voter", Direction: models.DirectionDown}
	_, err := f.sc.VoteService.Vote(f.ctx, req)
	require.NoError(t, err)

	req.HasDownvoted = true
	res, err := f.sc.VoteService.Vote(f.ctx, req)
	require.NoError(t, err)

	assert.Equal(t, models.VoteNone, res.State)
	assert.Zero(t, res.Upvotes)
	assert.Zero(t, res.Downvotes)
	assert.Zero(t, f.reputation(t, "voter"))
	assert.Equal(t, authorStart, f.reputation(t, "author"))
}

func TestVote_StaleFlagsKeepSetsDisjoint(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "voter")
	q := f.question(t, "author", "Stale flags question")

	_, err := f.sc.VoteService.Vote(f.ctx, &VoteRequest{
		Kind: models.VoteOnQuestion, ItemID: q.ID.String(), VoterID: "voter", Direction: models.DirectionUp,
	})
	require.NoError(t, err)

	// Caller forgot it already upvoted
	res, err := f.sc.VoteService.Vote(f.ctx, &VoteRequest{
		Kind: models.VoteOnQuestion, ItemID: q.ID.String(), VoterID: "voter", Direction: models.DirectionDown,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
}

func TestVote_SelfVoteMergesDeltas(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	q := f.question(t, "author", "Voting on my own question")
	start := f.reputation(t, "author")

	_, err := f.sc.VoteService.Vote(f.ctx, &VoteRequest{
		Kind: models.VoteOnQuestion, ItemID: q.ID.String(), VoterID: "author", Direction: models.DirectionUp,
	})
	require.NoError(t, err)
	assert.Equal(t, start+11, f.reputation(t, "author"))
}

func TestVote_AnswersCarryNoReputation(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "voter")
	q := f.question(t, "author", "Question with an answer")
	a := f.answer(t, "author", q.ID)
	start := f.reputation(t, "author")

	res, err := f.sc.VoteService.Vote(f.ctx, &VoteRequest{
		Kind: models.VoteOnAnswer, ItemID: a.ID.String(), VoterID: "voter", Direction: models.DirectionUp,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upvotes)
	assert.Zero(t, res.VoterDelta)
	assert.Zero(t, res.AuthorDelta)
	assert.Equal(t, start, f.reputation(t, "author"))
	assert.Zero(t, f.reputation(t, "voter"))
}

func TestVote_Errors(t *testing.T) {
	f := newFixture(t)
	f.user(t, "voter")
	missing := models.NewID().String()

	tests := []struct {
		name  string
		req   *VoteRequest
		check func(error) bool
	}{
		{"no voter", &VoteRequest{Kind: models.VoteOnQuestion, ItemID: missing, Direction: models.DirectionUp}, IsUnauthenticatedError},
		{"both flags", &VoteRequest{Kind: models.VoteOnQuestion, ItemID: missing, VoterID: "voter", Direction: models.DirectionUp, HasUpvoted: true, HasDownvoted: true}, IsValidationError},
		{"bad direction", &VoteRequest{Kind: models.VoteOnQuestion, ItemID: missing, VoterID: "voter", Direction: "sideways"}, IsValidationError},
		{"bad kind", &VoteRequest{Kind: "comment", ItemID: missing, VoterID: "voter", Direction: models.DirectionUp}, IsValidationError},
		{"malformed id", &VoteRequest{Kind: models.VoteOnQuestion, ItemID: "nope", VoterID: "voter", Direction: models.DirectionUp}, IsValidationError},
		{"missing item", &VoteRequest{Kind: models.VoteOnQuestion, ItemID: missing, VoterID: "voter", Direction: models.DirectionUp}, IsNotFoundError},
		{"unknown voter", &VoteRequest{Kind: models.VoteOnAnswer, ItemID: missing, VoterID: "ghost", Direction: models.DirectionUp}, IsNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sc.VoteService.Vote(f.ctx, tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}
