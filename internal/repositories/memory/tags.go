package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

type tagRepository struct {
	s *state
}

func cloneTag(t *models.Tag) *models.Tag {
	c := *t
	c.Questions = cloneIDs(t.Questions)
	return &c
}

func (r *tagRepository) AttachQuestion(ctx context.Context, name string, questionID models.ID) (*models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tags {
		if strings.EqualFold(t.Name, name) {
			t.Questions = addToSet(t.Questions, questionID)
			return cloneTag(t), nil
		}
	}

	t := &models.Tag{
		ID:        models.NewID(),
		Name:      name,
		Questions: []models.ID{questionID},
		CreatedAt: now(),
	}
	r.s.tags[t.ID] = t
	return cloneTag(t), nil
}

func (r *tagRepository) GetByID(ctx context.Context, id models.ID) (*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", id, repositories.ErrNotFound)
	}
	return cloneTag(t), nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []models.ID) ([]*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.s.tags[id]; ok {
			out = append(out, cloneTag(t))
		}
	}
	return out, nil
}

func (r *tagRepository) PullQuestion(ctx context.Context, questionID models.ID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var modified int64
	for _, t := range r.s.tags {
		if models.ContainsID(t.Questions, questionID) {
			t.Questions = pull(t.Questions, questionID)
			modified++
		}
	}
	return modified, nil
}

func (r *tagRepository) matching(q repositories.TagQuery) []*models.Tag {
	var out []*models.Tag
	for _, t := range r.s.tags {
		if q.PopulatedOnly && len(t.Questions) == 0 {
			continue
		}
		if q.Search != "" && !contains(t.Name, q.Search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func tagKeys(spec models.SortSpec) []sortKey[*models.Tag] {
	createdAt := func(t *models.Tag) time.Time { return t.CreatedAt }
	id := func(t *models.Tag) models.ID { return t.ID }

	switch spec {
	case models.SortName:
		return []sortKey[*models.Tag]{byString(func(t *models.Tag) string { return t.Name }), byID(id, false)}
	case models.SortNewest:
		return []sortKey[*models.Tag]{byTime(createdAt, true), byID(id, true)}
	case models.SortOldest:
		return []sortKey[*models.Tag]{byTime(createdAt, false), byID(id, false)}
	default:
		return []sortKey[*models.Tag]{byInt(func(t *models.Tag) int64 { return int64(len(t.Questions)) }, true), byID(id, false)}
	}
}

func (r *tagRepository) Find(ctx context.Context, q repositories.TagQuery, opts repositories.FindOptions) ([]*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	found := window(r.matching(q), opts, tagKeys(opts.Sort)...)
	out := make([]*models.Tag, len(found))
	for i, t := range found {
		out[i] = cloneTag(t)
	}
	return out, nil
}

func (r *tagRepository) Count(ctx context.Context, q repositories.TagQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.matching(q))), nil
}
