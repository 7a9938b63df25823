package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories"
	"devflow/internal/revalidation"
)

const (
	hotQuestionsKey = "questions:hot"

	// askReputation is awarded to the author of every new question
	askReputation = 5
)

type questionService struct {
	store    *repositories.Store
	tags     TagService
	cache    cache.Cache
	hook     revalidation.Hook
	pager    pager
	hotLimit int64
	hotTTL   time.Duration
	logger   *zap.Logger
}

// NewQuestionService creates the question service
func NewQuestionService(
	store *repositories.Store,
	tags TagService,
	c cache.Cache,
	hook revalidation.Hook,
	cfg *config.Config,
	logger *zap.Logger,
) QuestionService {
	return &questionService{
		store:    store,
		tags:     tags,
		cache:    c,
		hook:     hook,
		pager:    newPager(cfg.Engine),
		hotLimit: int64(cfg.Engine.HotQuestionsLimit),
		hotTTL:   cfg.Cache.HotQuestionsTTL,
		logger:   logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateQuestion stores a question, attaches its tags, logs the ask and
// rewards the author
func (s *questionService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	author, err := resolveUser(ctx, s.store.Users, req.AuthorID)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		ID:        models.NewID(),
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Author:    author.ID,
		Tags:      []models.ID{},
		Upvotes:   []models.ID{},
		Downvotes: []models.ID{},
		Answers:   []models.ID{},
	}
	if err := s.store.Questions.Create(ctx, question); err != nil {
		return nil, storeError(err, "question", question.ID)
	}

	tags, err := s.tags.AttachTags(ctx, question.ID, req.Tags)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		question.Tags = append(question.Tags, t.ID)
	}

	if err := s.store.Interactions.Create(ctx, &models.Interaction{
		User:     author.ID,
		Action:   models.ActionAskQuestion,
		Question: &question.ID,
		Tags:     question.Tags,
	}); err != nil {
		return nil, NewInternalError("failed to record interaction", err)
	}

	if err := s.store.Users.IncrementReputation(ctx, author.ID, askReputation); err != nil {
		return nil, NewInternalError("failed to update reputation", err)
	}
	observeReputation(askReputation)

	s.invalidateRankings(ctx)
	s.hook.Revalidate(ctx, req.Path)

	s.logger.Info("Question created",
		zap.String("question_id", question.ID.String()),
		zap.String("author_id", author.ID.String()),
		zap.Int("tags", len(question.Tags)),
	)
	return question, nil
}

// GetQuestion loads a question by id
func (s *questionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	questionID, err := parseID("question_id", id)
	if err != nil {
		return nil, err
	}
	question, err := s.store.Questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, storeError(err, "question", questionID)
	}
	return question, nil
}

// EditQuestion replaces a question's title and content
func (s *questionService) EditQuestion(ctx context.Context, req *EditQuestionRequest) (*models.Question, error) {
	questionID, err := parseID("question_id", req.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireQuestionAuthor(ctx, questionID, req.ActorID); err != nil {
		return nil, err
	}

	question, err := s.store.Questions.UpdateContent(ctx, questionID, strings.TrimSpace(req.Title), req.Content)
	if err != nil {
		return nil, storeError(err, "question", questionID)
	}

	s.hook.Revalidate(ctx, req.Path)
	s.logger.Info("Question edited", zap.String("question_id", questionID.String()))
	return question, nil
}

// DeleteQuestion removes a question, then its answers, its interactions, its
// tag references and its saved references. The steps are not transactional:
// a failure stops the cascade and earlier steps stay applied.
func (s *questionService) DeleteQuestion(ctx context.Context, req *DeleteQuestionRequest) error {
	questionID, err := parseID("question_id", req.QuestionID)
	if err != nil {
		return err
	}
	if err := s.requireQuestionAuthor(ctx, questionID, req.ActorID); err != nil {
		return err
	}

	if err := s.store.Questions.Delete(ctx, questionID); err != nil {
		return storeError(err, "question", questionID)
	}

	answers, err := s.store.Answers.DeleteByQuestion(ctx, questionID)
	if err != nil {
		return cascadeError("answers", questionID, err)
	}
	interactions, err := s.store.Interactions.DeleteByQuestion(ctx, questionID)
	if err != nil {
		return cascadeError("interactions", questionID, err)
	}
	tags, err := s.store.Tags.PullQuestion(ctx, questionID)
	if err != nil {
		return cascadeError("tag references", questionID, err)
	}
	saved, err := s.store.Users.PullSaved(ctx, questionID)
	if err != nil {
		return cascadeError("saved references", questionID, err)
	}

	s.invalidateRankings(ctx)
	s.hook.Revalidate(ctx, req.Path)

	s.logger.Info("Question deleted",
		zap.String("question_id", questionID.String()),
		zap.Int64("answers_deleted", answers),
		zap.Int64("interactions_deleted", interactions),
		zap.Int64("tags_updated", tags),
		zap.Int64("users_updated", saved),
	)
	return nil
}

func (s *questionService) requireQuestionAuthor(ctx context.Context, questionID models.ID, actorID string) error {
	if actorID == "" {
		return NewUnauthenticatedError("sign in required")
	}
	question, err := s.store.Questions.GetByID(ctx, questionID)
	if err != nil {
		return storeError(err, "question", questionID)
	}
	return requireAuthor(ctx, s.store.Users, actorID, question.Author, "question")
}

func cascadeError(step string, questionID models.ID, err error) error {
	return NewInternalError("question deleted but cleanup failed",
		fmt.Errorf("delete %s of question %s: %w", step, questionID, err)).
		WithDetail("step", step)
}

// ===============================
// LISTINGS
// ===============================

// ListQuestions pages through all questions
func (s *questionService) ListQuestions(ctx context.Context, req *ListQuestionsRequest) (*models.Page[*models.Question], error) {
	sort, err := resolveSort(req.Sort, models.QuestionSorts, models.SortNewest)
	if err != nil {
		return nil, err
	}

	q := repositories.QuestionQuery{
		Search:         strings.TrimSpace(req.Filter.Search),
		SearchContent:  true,
		UnansweredOnly: req.Filter.UnansweredOnly,
	}
	result, err := Paginate(ctx, s.pager.normalize(req.Page),
		func(ctx context.Context) (int64, error) { return s.store.Questions.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Question, error) {
			return s.store.Questions.Find(ctx, q, repositories.FindOptions{Sort: sort, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list questions", err)
	}
	return result, nil
}

// HotQuestions returns the most viewed questions, upvotes breaking ties
func (s *questionService) HotQuestions(ctx context.Context) ([]*models.Question, error) {
	return cache.GetOrLoad(ctx, s.cache, s.logger, hotQuestionsKey, s.hotTTL, func(ctx context.Context) ([]*models.Question, error) {
		questions, err := s.store.Questions.Find(ctx, repositories.QuestionQuery{},
			repositories.FindOptions{Sort: models.SortPopular, Limit: s.hotLimit})
		if err != nil {
			return nil, NewInternalError("failed to load hot questions", err)
		}
		return questions, nil
	})
}

// ViewQuestion counts a view and, for a known viewer, records the single
// view interaction of that viewer on the question
func (s *questionService) ViewQuestion(ctx context.Context, req *ViewQuestionRequest) (*models.Question, error) {
	questionID, err := parseID("question_id", req.QuestionID)
	if err != nil {
		return nil, err
	}

	var viewer *models.User
	if req.ViewerID != "" {
		if viewer, err = resolveUser(ctx, s.store.Users, req.ViewerID); err != nil {
			return nil, err
		}
	}

	question, err := s.store.Questions.IncrementViews(ctx, questionID)
	if err != nil {
		return nil, storeError(err, "question", questionID)
	}
	if viewer == nil {
		return question, nil
	}
	created, err := s.store.Interactions.RecordView(ctx, viewer.ID, questionID, question.Tags)
	if err != nil {
		return nil, NewInternalError("failed to record view", err)
	}
	if created {
		s.logger.Debug("View interaction recorded",
			zap.String("question_id", questionID.String()),
			zap.String("user_id", viewer.ID.String()),
		)
	}
	return question, nil
}

func (s *questionService) invalidateRankings(ctx context.Context) {
	if err := s.cache.Delete(ctx, hotQuestionsKey); err != nil {
		s.logger.Warn("Failed to invalidate hot questions", zap.Error(err))
	}
	if err := s.cache.DeletePrefix(ctx, popularTagsKeyPrefix); err != nil {
		s.logger.Warn("Failed to invalidate popular tags", zap.Error(err))
	}
}
