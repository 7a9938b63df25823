package memory

import (
	"context"
	"fmt"
	"sort"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

type interactionRepository struct {
	s *state
}

func (r *interactionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if interaction.Action == models.ActionView && interaction.Question != nil {
		if r.findView(interaction.User, *interaction.Question) != nil {
			return fmt.Errorf("view of %s by %s: %w", *interaction.Question, interaction.User, repositories.ErrDuplicate)
		}
	}
	r.insert(interaction)
	return nil
}

func (r *interactionRepository) insert(interaction *models.Interaction) {
	if interaction.ID.IsZero() {
		interaction.ID = models.NewID()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = now()
	}
	c := *interaction
	c.Tags = cloneIDs(interaction.Tags)
	r.s.interactions[c.ID] = &c
}

func (r *interactionRepository) findView(userID, questionID models.ID) *models.Interaction {
	for _, in := range r.s.interactions {
		if in.Action == models.ActionView && in.User == userID && in.Question != nil && *in.Question == questionID {
			return in
		}
	}
	return nil
}

func (r *interactionRepository) RecordView(ctx context.Context, userID, questionID models.ID, tags []models.ID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.findView(userID, questionID) != nil {
		return false, nil
	}
	q := questionID
	r.insert(&models.Interaction{
		User:     userID,
		Action:   models.ActionView,
		Question: &q,
		Tags:     tags,
	})
	return true, nil
}

func (r *interactionRepository) matches(in *models.Interaction, q repositories.InteractionQuery) bool {
	if !q.User.IsZero() && in.User != q.User {
		return false
	}
	if !q.Question.IsZero() && (in.Question == nil || *in.Question != q.Question) {
		return false
	}
	if q.Action != "" && in.Action != q.Action {
		return false
	}
	return true
}

func (r *interactionRepository) Count(ctx context.Context, q repositories.InteractionQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, in := range r.s.interactions {
		if r.matches(in, q) {
			n++
		}
	}
	return n, nil
}

func (r *interactionRepository) DistinctTags(ctx context.Context, userID models.ID) ([]models.ID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.ID
	for _, in := range r.s.interactions {
		if in.User != userID {
			continue
		}
		for _, tag := range in.Tags {
			out = addToSet(out, tag)
		}
	}
	return out, nil
}

func (r *interactionRepository) TopTags(ctx context.Context, userID models.ID, limit int64) ([]models.TagCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.ID]int64)
	for _, in := range r.s.interactions {
		if in.User != userID {
			continue
		}
		for _, tag := range in.Tags {
			counts[tag]++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.TagCount{ID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID.Compare(out[j].ID) < 0
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *interactionRepository) deleteWhere(match func(*models.Interaction) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, in := range r.s.interactions {
		if match(in) {
			delete(r.s.interactions, id)
			deleted++
		}
	}
	return deleted
}

func (r *interactionRepository) DeleteByQuestion(ctx context.Context, questionID models.ID) (int64, error) {
	return r.deleteWhere(func(in *models.Interaction) bool {
		return in.Question != nil && *in.Question == questionID
	}), nil
}

func (r *interactionRepository) DeleteByAnswer(ctx context.Context, answerID models.ID) (int64, error) {
	return r.deleteWhere(func(in *models.Interaction) bool {
		return in.Answer != nil && *in.Answer == answerID
	}), nil
}

func (r *interactionRepository) DeleteByUser(ctx context.Context, userID models.ID) (int64, error) {
	return r.deleteWhere(func(in *models.Interaction) bool {
		return in.User == userID
	}), nil
}
