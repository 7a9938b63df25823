package memory

import (
	"context"
	"fmt"
	"time"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

type questionRepository struct {
	s *state
}

func cloneQuestion(q *models.Question) *models.Question {
	c := *q
	c.Tags = cloneIDs(q.Tags)
	c.Upvotes = cloneIDs(q.Upvotes)
	c.Downvotes = cloneIDs(q.Downvotes)
	c.Answers = cloneIDs(q.Answers)
	return &c
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if question.ID.IsZero() {
		question.ID = models.NewID()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now()
	}
	if _, exists := r.s.questions[question.ID]; exists {
		return fmt.Errorf("question %s: %w", question.ID, repositories.ErrDuplicate)
	}
	r.s.questions[question.ID] = cloneQuestion(question)
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id models.ID) (*models.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q, ok := r.s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	return cloneQuestion(q), nil
}

func (r *questionRepository) UpdateContent(ctx context.Context, id models.ID, title, content string) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	q.Title = title
	q.Content = content
	return cloneQuestion(q), nil
}

func (r *questionRepository) Delete(ctx context.Context, id models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.questions[id]; !ok {
		return fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.s.questions, id)
	return nil
}

func (r *questionRepository) matching(q repositories.QuestionQuery) []*models.Question {
	var out []*models.Question
	for _, question := range r.s.questions {
		if matchesQuestion(question, q) {
			out = append(out, question)
		}
	}
	return out
}

func matchesQuestion(question *models.Question, q repositories.QuestionQuery) bool {
	if q.Search != "" {
		hit := contains(question.Title, q.Search)
		if !hit && q.SearchContent {
			hit = contains(question.Content, q.Search)
		}
		if !hit {
			return false
		}
	}
	if q.UnansweredOnly && len(question.Answers) > 0 {
		return false
	}
	if !q.Author.IsZero() && question.Author != q.Author {
		return false
	}
	if !q.ExcludeAuthor.IsZero() && question.Author == q.ExcludeAuthor {
		return false
	}
	if len(q.TagsAny) > 0 && !intersects(question.Tags, q.TagsAny) {
		return false
	}
	if q.RestrictIDs && !models.ContainsID(q.IDs, question.ID) {
		return false
	}
	return true
}

func questionKeys(spec models.SortSpec) []sortKey[*models.Question] {
	createdAt := func(q *models.Question) time.Time { return q.CreatedAt }
	id := func(q *models.Question) models.ID { return q.ID }

	switch spec {
	case models.SortOldest:
		return []sortKey[*models.Question]{byTime(createdAt, false), byID(id, false)}
	case models.SortMostViewed:
		return []sortKey[*models.Question]{byInt(func(q *models.Question) int64 { return q.Views }, true), byID(id, false)}
	case models.SortMostVoted:
		return []sortKey[*models.Question]{byInt(func(q *models.Question) int64 { return int64(len(q.Upvotes)) }, true), byID(id, false)}
	case models.SortMostAnswered:
		return []sortKey[*models.Question]{byInt(func(q *models.Question) int64 { return int64(len(q.Answers)) }, true), byID(id, false)}
	default:
		return []sortKey[*models.Question]{byTime(createdAt, true), byID(id, true)}
	}
}

// hotKeys orders by views, then by upvote count
func hotKeys() []sortKey[*models.Question] {
	return []sortKey[*models.Question]{
		byInt(func(q *models.Question) int64 { return q.Views }, true),
		byInt(func(q *models.Question) int64 { return int64(len(q.Upvotes)) }, true),
		byID(func(q *models.Question) models.ID { return q.ID }, false),
	}
}

func (r *questionRepository) Find(ctx context.Context, q repositories.QuestionQuery, opts repositories.FindOptions) ([]*models.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	keys := questionKeys(opts.Sort)
	if opts.Sort == models.SortPopular {
		keys = hotKeys()
	}

	found := window(r.matching(q), opts, keys...)
	out := make([]*models.Question, len(found))
	for i, question := range found {
		out[i] = cloneQuestion(question)
	}
	return out, nil
}

func (r *questionRepository) Count(ctx context.Context, q repositories.QuestionQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.matching(q))), nil
}

func (r *questionRepository) AddTags(ctx context.Context, id models.ID, tagIDs []models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	for _, tagID := range tagIDs {
		q.Tags = addToSet(q.Tags, tagID)
	}
	return nil
}

func (r *questionRepository) PushAnswer(ctx context.Context, id, answerID models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	q.Answers = addToSet(q.Answers, answerID)
	return nil
}

func (r *questionRepository) PullAnswer(ctx context.Context, id, answerID models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	q.Answers = pull(q.Answers, answerID)
	return nil
}

func (r *questionRepository) IncrementViews(ctx context.Context, id models.ID) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, repositories.ErrNotFound)
	}
	q.Views++
	return cloneQuestion(q), nil
}

func (r *questionRepository) SetVote(ctx context.Context, itemID, voterID models.ID, vote models.VoteState) (*models.VoteSets, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[itemID]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", itemID, repositories.ErrNotFound)
	}
	q.Upvotes, q.Downvotes = applyVote(q.Upvotes, q.Downvotes, voterID, vote)
	return &models.VoteSets{
		ItemID:    q.ID,
		Author:    q.Author,
		Upvotes:   cloneIDs(q.Upvotes),
		Downvotes: cloneIDs(q.Downvotes),
	}, nil
}

// applyVote places voter into the set matching vote and out of the other
func applyVote(up, down []models.ID, voter models.ID, vote models.VoteState) ([]models.ID, []models.ID) {
	switch vote {
	case models.VoteUp:
		return addToSet(up, voter), pull(down, voter)
	case models.VoteDown:
		return pull(up, voter), addToSet(down, voter)
	default:
		return pull(up, voter), pull(down, voter)
	}
}
