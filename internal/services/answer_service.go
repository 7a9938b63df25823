package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories"
	"devflow/internal/revalidation"
)

type answerService struct {
	store  *repositories.Store
	hook   revalidation.Hook
	pager  pager
	logger *zap.Logger
}

// NewAnswerService creates the answer service
func NewAnswerService(store *repositories.Store, hook revalidation.Hook, cfg *config.Config, logger *zap.Logger) AnswerService {
	return &answerService{
		store:  store,
		hook:   hook,
		pager:  newPager(cfg.Engine),
		logger: logger,
	}
}

// CreateAnswer links a new answer onto its question, stores it and logs the
// answer interaction
func (s *answerService) CreateAnswer(ctx context.Context, req *CreateAnswerRequest) (*models.Answer, error) {
	questionID, err := parseID("question_id", req.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	author, err := resolveUser(ctx, s.store.Users, req.AuthorID)
	if err != nil {
		return nil, err
	}

	question, err := s.store.Questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, storeError(err, "question", questionID)
	}

	answer := &models.Answer{
		ID:        models.NewID(),
		Content:   req.Content,
		Author:    author.ID,
		Question:  questionID,
		Upvotes:   []models.ID{},
		Downvotes: []models.ID{},
	}

	// The question may vanish between the read and the push
	if err := s.store.Questions.PushAnswer(ctx, questionID, answer.ID); err != nil {
		return nil, storeError(err, "question", questionID)
	}
	if err := s.store.Answers.Create(ctx, answer); err != nil {
		return nil, storeError(err, "answer", answer.ID)
	}

	if err := s.store.Interactions.Create(ctx, &models.Interaction{
		User:     author.ID,
		Action:   models.ActionAnswer,
		Question: &questionID,
		Answer:   &answer.ID,
		Tags:     question.Tags,
	}); err != nil {
		return nil, NewInternalError("failed to record interaction", err)
	}

	s.hook.Revalidate(ctx, req.Path)
	s.logger.Info("Answer created",
		zap.String("answer_id", answer.ID.String()),
		zap.String("question_id", questionID.String()),
		zap.String("author_id", author.ID.String()),
	)
	return answer, nil
}

// ListAnswers pages through one question's answers
func (s *answerService) ListAnswers(ctx context.Context, req *ListAnswersRequest) (*models.Page[*models.Answer], error) {
	questionID, err := parseID("question_id", req.QuestionID)
	if err != nil {
		return nil, err
	}
	sort, err := resolveSort(req.Sort, models.AnswerSorts, models.SortNewest)
	if err != nil {
		return nil, err
	}

	q := repositories.AnswerQuery{Question: questionID}
	result, err := Paginate(ctx, s.pager.normalize(req.Page),
		func(ctx context.Context) (int64, error) { return s.store.Answers.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Answer, error) {
			return s.store.Answers.Find(ctx, q, repositories.FindOptions{Sort: sort, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list answers", err)
	}
	return result, nil
}

// DeleteAnswer removes an answer, unlinks it from its question and drops
// its interactions
func (s *answerService) DeleteAnswer(ctx context.Context, req *DeleteAnswerRequest) error {
	answerID, err := parseID("answer_id", req.AnswerID)
	if err != nil {
		return err
	}

	if req.ActorID == "" {
		return NewUnauthenticatedError("sign in required")
	}

	answer, err := s.store.Answers.GetByID(ctx, answerID)
	if err != nil {
		return storeError(err, "answer", answerID)
	}
	if err := requireAuthor(ctx, s.store.Users, req.ActorID, answer.Author, "answer"); err != nil {
		return err
	}
	if err := s.store.Answers.Delete(ctx, answerID); err != nil {
		return storeError(err, "answer", answerID)
	}

	// An answer whose question is already gone has nothing to unlink
	if err := s.store.Questions.PullAnswer(ctx, answer.Question, answerID); err != nil &&
		!errors.Is(err, repositories.ErrNotFound) {
		return NewInternalError("answer deleted but question update failed", err)
	}
	if _, err := s.store.Interactions.DeleteByAnswer(ctx, answerID); err != nil {
		return NewInternalError("answer deleted but interaction cleanup failed", err)
	}

	s.hook.Revalidate(ctx, req.Path)
	s.logger.Info("Answer deleted",
		zap.String("answer_id", answerID.String()),
		zap.String("question_id", answer.Question.String()),
	)
	return nil
}
