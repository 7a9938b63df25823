package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"devflow/internal/models"
	"devflow/internal/repositories"
	"devflow/internal/revalidation"
)

// Reputation carried by a vote state: the voter earns voterWeight for any
// non-neutral vote and the author earns authorWeight per unit of state.
const (
	voterWeight  = 1
	authorWeight = 10
)

type voteService struct {
	users     repositories.UserRepository
	questions repositories.VoteStore
	answers   repositories.VoteStore
	hook      revalidation.Hook
	logger    *zap.Logger
}

// NewVoteService creates the vote engine
func NewVoteService(store *repositories.Store, hook revalidation.Hook, logger *zap.Logger) VoteService {
	return &voteService{
		users:     store.Users,
		questions: store.Questions,
		answers:   store.Answers,
		hook:      hook,
		logger:    logger,
	}
}

// currentState reads the caller-supplied flags as a vote state
func currentState(hasUpvoted, hasDownvoted bool) models.VoteState {
	switch {
	case hasUpvoted:
		return models.VoteUp
	case hasDownvoted:
		return models.VoteDown
	default:
		return models.VoteNone
	}
}

// nextState applies a button press: pressing the active direction clears the
// vote, pressing the other one switches to it
func nextState(current models.VoteState, dir models.VoteDirection) models.VoteState {
	pressed := models.VoteUp
	if dir == models.DirectionDown {
		pressed = models.VoteDown
	}
	if current == pressed {
		return models.VoteNone
	}
	return pressed
}

// reputationDeltas returns the voter and author deltas of a transition.
// Each state has a fixed potential so any sequence of presses that returns
// to its starting state nets to zero.
func reputationDeltas(from, to models.VoteState) (voter, author int64) {
	potential := func(s models.VoteState) (int64, int64) {
		v := int64(s)
		if v < 0 {
			return -v * voterWeight, v * authorWeight
		}
		return v * voterWeight, v * authorWeight
	}
	fromVoter, fromAuthor := potential(from)
	toVoter, toAuthor := potential(to)
	return toVoter - fromVoter, toAuthor - fromAuthor
}

// Vote applies one toggle. Only question votes move reputation.
func (s *voteService) Vote(ctx context.Context, req *VoteRequest) (*VoteResult, error) {
	if req == nil {
		return nil, NewValidationError("vote request is required", nil)
	}
	if req.VoterID == "" {
		return nil, NewUnauthenticatedError("sign in to vote")
	}
	if req.HasUpvoted && req.HasDownvoted {
		return nil, NewValidationError("a vote cannot be both up and down", nil).
			WithDetail("field", "has_upvoted")
	}
	if req.Direction != models.DirectionUp && req.Direction != models.DirectionDown {
		return nil, InvalidInputError("direction", "must be up or down")
	}

	var target repositories.VoteStore
	switch req.Kind {
	case models.VoteOnQuestion:
		target = s.questions
	case models.VoteOnAnswer:
		target = s.answers
	default:
		return nil, InvalidInputError("kind", "must be question or answer")
	}

	itemID, err := parseID("item_id", req.ItemID)
	if err != nil {
		return nil, err
	}

	voter, err := resolveUser(ctx, s.users, req.VoterID)
	if err != nil {
		return nil, err
	}

	from := currentState(req.HasUpvoted, req.HasDownvoted)
	to := nextState(from, req.Direction)

	sets, err := target.SetVote(ctx, itemID, voter.ID, to)
	if err != nil {
		return nil, storeError(err, string(req.Kind), itemID)
	}

	result := &VoteResult{
		ItemID:    sets.ItemID,
		State:     to,
		Upvotes:   len(sets.Upvotes),
		Downvotes: len(sets.Downvotes),
	}

	if req.Kind == models.VoteOnQuestion {
		result.VoterDelta, result.AuthorDelta = reputationDeltas(from, to)
		if err := s.applyReputation(ctx, voter.ID, sets.Author, result.VoterDelta, result.AuthorDelta); err != nil {
			return nil, err
		}
	}

	votesTotal.WithLabelValues(string(req.Kind), to.String()).Inc()

	s.logger.Info("Vote applied",
		zap.String("kind", string(req.Kind)),
		zap.String("item_id", itemID.String()),
		zap.String("voter_id", voter.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int64("voter_delta", result.VoterDelta),
		zap.Int64("author_delta", result.AuthorDelta),
	)

	s.hook.Revalidate(ctx, req.Path)
	return result, nil
}

// applyReputation issues one increment per affected user, merging the two
// deltas when the voter is the author and skipping zero deltas
func (s *voteService) applyReputation(ctx context.Context, voterID, authorID models.ID, voterDelta, authorDelta int64) error {
	increments := []struct {
		id    models.ID
		delta int64
	}{
		{voterID, voterDelta},
		{authorID, authorDelta},
	}
	if voterID == authorID {
		increments = increments[:1]
		increments[0].delta = voterDelta + authorDelta
	}

	for _, inc := range increments {
		if inc.delta == 0 || inc.id.IsZero() {
			continue
		}
		if err := s.users.IncrementReputation(ctx, inc.id, inc.delta); err != nil {
			return NewInternalError("failed to update reputation",
				fmt.Errorf("user %s: %w", inc.id, err))
		}
		observeReputation(inc.delta)
	}
	return nil
}
