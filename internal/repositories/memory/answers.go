package memory

import (
	"context"
	"fmt"
	"time"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

type answerRepository struct {
	s *state
}

func cloneAnswer(a *models.Answer) *models.Answer {
	c := *a
	c.Upvotes = cloneIDs(a.Upvotes)
	c.Downvotes = cloneIDs(a.Downvotes)
	return &c
}

func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if answer.ID.IsZero() {
		answer.ID = models.NewID()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now()
	}
	if _, exists := r.s.answers[answer.ID]; exists {
		return fmt.Errorf("answer %s: %w", answer.ID, repositories.ErrDuplicate)
	}
	r.s.answers[answer.ID] = cloneAnswer(answer)
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, id models.ID) (*models.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	return cloneAnswer(a), nil
}

func (r *answerRepository) Delete(ctx context.Context, id models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.answers[id]; !ok {
		return fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.s.answers, id)
	return nil
}

func (r *answerRepository) DeleteByQuestion(ctx context.Context, questionID models.ID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, a := range r.s.answers {
		if a.Question == questionID {
			delete(r.s.answers, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *answerRepository) matching(q repositories.AnswerQuery) []*models.Answer {
	var out []*models.Answer
	for _, a := range r.s.answers {
		if !q.Question.IsZero() && a.Question != q.Question {
			continue
		}
		if !q.Author.IsZero() && a.Author != q.Author {
			continue
		}
		if q.Search != "" && !contains(a.Content, q.Search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func answerKeys(spec models.SortSpec) []sortKey[*models.Answer] {
	createdAt := func(a *models.Answer) time.Time { return a.CreatedAt }
	id := func(a *models.Answer) models.ID { return a.ID }

	switch spec {
	case models.SortOldest:
		return []sortKey[*models.Answer]{byTime(createdAt, false), byID(id, false)}
	case models.SortMostVoted:
		return []sortKey[*models.Answer]{byInt(func(a *models.Answer) int64 { return int64(len(a.Upvotes)) }, true), byID(id, false)}
	default:
		return []sortKey[*models.Answer]{byTime(createdAt, true), byID(id, true)}
	}
}

func (r *answerRepository) Find(ctx context.Context, q repositories.AnswerQuery, opts repositories.FindOptions) ([]*models.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	found := window(r.matching(q), opts, answerKeys(opts.Sort)...)
	out := make([]*models.Answer, len(found))
	for i, a := range found {
		out[i] = cloneAnswer(a)
	}
	return out, nil
}

func (r *answerRepository) Count(ctx context.Context, q repositories.AnswerQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.matching(q))), nil
}

func (r *answerRepository) SetVote(ctx context.Context, itemID, voterID models.ID, vote models.VoteState) (*models.VoteSets, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.answers[itemID]
	if !ok {
		return nil, fmt.Errorf("answer %s: %w", itemID, repositories.ErrNotFound)
	}
	a.Upvotes, a.Downvotes = applyVote(a.Upvotes, a.Downvotes, voterID, vote)
	return &models.VoteSets{
		ItemID:    a.ID,
		Author:    a.Author,
		Upvotes:   cloneIDs(a.Upvotes),
		Downvotes: cloneIDs(a.Downvotes),
	}, nil
}
