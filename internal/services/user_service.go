// file: internal/services/user_service.go
package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories"
	"devflow/internal/revalidation"
)

type userService struct {
	store     *repositories.Store
	questions QuestionService
	hook      revalidation.Hook
	pager     pager
	pageSize  int
	logger    *zap.Logger
}

// NewUserService creates the user service. Deleting a user removes their
// questions through questions so the full question cascade applies.
func NewUserService(
	store *repositories.Store,
	questions QuestionService,
	hook revalidation.Hook,
	cfg *config.Config,
	logger *zap.Logger,
) UserService {
	return &userService{
		store:     store,
		questions: questions,
		hook:      hook,
		pager:     newPager(cfg.Engine),
		pageSize:  cfg.Engine.UsersPageSize,
		logger:    logger,
	}
}

// lookupUser resolves a profile named in a path rather than by the caller
func (s *userService) lookupUser(ctx context.Context, clerkID string) (*models.User, error) {
	if strings.TrimSpace(clerkID) == "" {
		return nil, InvalidInputError("clerk_id", "is required")
	}
	user, err := s.store.Users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, storeError(err, "user", clerkID)
	}
	return user, nil
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateUser registers the profile of an identity provider subject
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user := &models.User{
		ClerkID:  req.ClerkID,
		Name:     strings.TrimSpace(req.Name),
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Picture:  req.Picture,
		Saved:    []models.ID{},
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user", req.ClerkID)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("clerk_id", user.ClerkID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// GetUser loads a profile by identity provider id
func (s *userService) GetUser(ctx context.Context, clerkID string) (*models.User, error) {
	return s.lookupUser(ctx, clerkID)
}

// UpdateUser edits the caller's profile
func (s *userService) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*models.User, error) {
	if req.ClerkID == "" {
		return nil, NewUnauthenticatedError("sign in to edit your profile")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.UpdateProfile(ctx, req.ClerkID, repositories.UserProfileUpdate{
		Name:      req.Name,
		Username:  req.Username,
		Bio:       req.Bio,
		Portfolio: req.Portfolio,
		Location:  req.Location,
		Picture:   req.Picture,
	})
	if err != nil {
		return nil, storeError(err, "user", req.ClerkID)
	}

	s.hook.Revalidate(ctx, req.Path)
	s.logger.Info("User profile updated", zap.String("clerk_id", req.ClerkID))
	return user, nil
}

// DeleteUser removes a user's questions with their cascades, the user's
// interactions and finally the user. Answers the user wrote are kept.
func (s *userService) DeleteUser(ctx context.Context, clerkID string) error {
	user, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return err
	}

	questions, err := s.store.Questions.Find(ctx,
		repositories.QuestionQuery{Author: user.ID},
		repositories.FindOptions{Sort: models.SortOldest},
	)
	if err != nil {
		return NewInternalError("failed to list user questions", err)
	}
	for _, q := range questions {
		if err := s.questions.DeleteQuestion(ctx, &DeleteQuestionRequest{
			QuestionID: q.ID.String(),
			ActorID:    clerkID,
		}); err != nil {
			if IsNotFoundError(err) {
				continue
			}
			return err
		}
	}

	if _, err := s.store.Interactions.DeleteByUser(ctx, user.ID); err != nil {
		return NewInternalError("failed to delete user interactions", err)
	}
	if err := s.store.Users.Delete(ctx, user.ID); err != nil {
		return storeError(err, "user", clerkID)
	}

	s.logger.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("clerk_id", clerkID),
		zap.Int("questions_deleted", len(questions)),
	)
	return nil
}

// ListUsers pages through the community
func (s *userService) ListUsers(ctx context.Context, req *ListUsersRequest) (*models.Page[*models.User], error) {
	sort, err := resolveSort(req.Sort, models.UserSorts, models.SortNewest)
	if err != nil {
		return nil, err
	}

	q := repositories.UserQuery{Search: strings.TrimSpace(req.Search)}
	result, err := Paginate(ctx, s.pager.withDefault(req.Page, s.pageSize),
		func(ctx context.Context) (int64, error) { return s.store.Users.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.User, error) {
			return s.store.Users.Find(ctx, q, repositories.FindOptions{Sort: sort, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list users", err)
	}
	return result, nil
}

// ===============================
// SAVED QUESTIONS
// ===============================

// ToggleSaveQuestion saves the question for the caller, or unsaves it when
// already saved, and reports the resulting state
func (s *userService) ToggleSaveQuestion(ctx context.Context, req *ToggleSaveRequest) (bool, error) {
	user, err := resolveUser(ctx, s.store.Users, req.ClerkID)
	if err != nil {
		return false, err
	}
	questionID, err := parseID("question_id", req.QuestionID)
	if err != nil {
		return false, err
	}
	if _, err := s.store.Questions.GetByID(ctx, questionID); err != nil {
		return false, storeError(err, "question", questionID)
	}

	saved, err := s.store.Users.ToggleSaved(ctx, user.ID, questionID)
	if err != nil {
		return false, storeError(err, "user", req.ClerkID)
	}

	s.hook.Revalidate(ctx, req.Path)
	s.logger.Info("Saved question toggled",
		zap.String("user_id", user.ID.String()),
		zap.String("question_id", questionID.String()),
		zap.Bool("saved", saved),
	)
	return saved, nil
}

// SavedQuestions pages through the caller's saved questions
func (s *userService) SavedQuestions(ctx context.Context, req *SavedQuestionsRequest) (*models.Page[*models.Question], error) {
	user, err := resolveUser(ctx, s.store.Users, req.ClerkID)
	if err != nil {
		return nil, err
	}
	sort, err := resolveSort(req.Sort, models.QuestionSorts, models.SortNewest)
	if err != nil {
		return nil, err
	}

	q := repositories.QuestionQuery{
		Search:      strings.TrimSpace(req.Search),
		RestrictIDs: true,
		IDs:         user.Saved,
	}
	result, err := Paginate(ctx, s.pager.normalize(req.Page),
		func(ctx context.Context) (int64, error) { return s.store.Questions.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Question, error) {
			return s.store.Questions.Find(ctx, q, repositories.FindOptions{Sort: sort, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list saved questions", err)
	}
	return result, nil
}

// ===============================
// PROFILE VIEWS
// ===============================

// UserInfo returns a profile with its question and answer totals
func (s *userService) UserInfo(ctx context.Context, clerkID string) (*models.UserInfo, error) {
	user, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	totalQuestions, err := s.store.Questions.Count(ctx, repositories.QuestionQuery{Author: user.ID})
	if err != nil {
		return nil, NewInternalError("failed to count questions", err)
	}
	totalAnswers, err := s.store.Answers.Count(ctx, repositories.AnswerQuery{Author: user.ID})
	if err != nil {
		return nil, NewInternalError("failed to count answers", err)
	}

	return &models.UserInfo{User: user, TotalQuestions: totalQuestions, TotalAnswers: totalAnswers}, nil
}

// UserQuestions pages through a user's questions, most viewed first
func (s *userService) UserQuestions(ctx context.Context, req *UserContentRequest) (*models.Page[*models.Question], error) {
	user, err := s.lookupUser(ctx, req.ClerkID)
	if err != nil {
		return nil, err
	}

	q := repositories.QuestionQuery{Author: user.ID}
	result, err := Paginate(ctx, s.pager.normalize(req.Page),
		func(ctx context.Context) (int64, error) { return s.store.Questions.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Question, error) {
			return s.store.Questions.Find(ctx, q, repositories.FindOptions{Sort: models.SortPopular, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list user questions", err)
	}
	return result, nil
}

// UserAnswers pages through a user's answers, most upvoted first
func (s *userService) UserAnswers(ctx context.Context, req *UserContentRequest) (*models.Page[*models.Answer], error) {
	user, err := s.lookupUser(ctx, req.ClerkID)
	if err != nil {
		return nil, err
	}

	q := repositories.AnswerQuery{Author: user.ID}
	result, err := Paginate(ctx, s.pager.normalize(req.Page),
		func(ctx context.Context) (int64, error) { return s.store.Answers.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Answer, error) {
			return s.store.Answers.Find(ctx, q, repositories.FindOptions{Sort: models.SortMostVoted, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list user answers", err)
	}
	return result, nil
}
