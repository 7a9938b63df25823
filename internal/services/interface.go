// file: internal/services/interface.go
package services

import (
	"context"

	"devflow/internal/models"
)

// ===============================
// CORE ENGINE INTERFACES
// ===============================

// VoteService applies up/down vote toggles and the reputation they carry
type VoteService interface {
	Vote(ctx context.Context, req *VoteRequest) (*VoteResult, error)
}

// TagService owns tag attachment and tag aggregations
type TagService interface {
	AttachTags(ctx context.Context, questionID models.ID, names []string) ([]*models.Tag, error)
	PopularTags(ctx context.Context, limit int) ([]models.TagCount, error)
	ListTags(ctx context.Context, req *ListTagsRequest) (*models.Page[*models.Tag], error)
	QuestionsForTag(ctx context.Context, req *TagQuestionsRequest) (*TagQuestionsPage, error)
	TopInteractedTags(ctx context.Context, clerkID string, limit int) ([]models.TagCount, error)
}

// RecommendationService builds the personalized question feed
type RecommendationService interface {
	Recommend(ctx context.Context, req *RecommendRequest) (*models.Page[*models.Question], error)
}

// SearchService answers the global search box
type SearchService interface {
	// Search treats an empty or unrecognized kind as a global search
	Search(ctx context.Context, query, kind string) ([]models.SearchResult, error)
	// SearchKind searches one kind and rejects unrecognized kinds
	SearchKind(ctx context.Context, query, kind string) ([]models.SearchResult, error)
}

// ===============================
// CONTENT SERVICE INTERFACES
// ===============================

// QuestionService defines question lifecycle operations
type QuestionService interface {
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	EditQuestion(ctx context.Context, req *EditQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, req *DeleteQuestionRequest) error
	ListQuestions(ctx context.Context, req *ListQuestionsRequest) (*models.Page[*models.Question], error)
	HotQuestions(ctx context.Context) ([]*models.Question, error)
	ViewQuestion(ctx context.Context, req *ViewQuestionRequest) (*models.Question, error)
}

// AnswerService defines answer lifecycle operations
type AnswerService interface {
	CreateAnswer(ctx context.Context, req *CreateAnswerRequest) (*models.Answer, error)
	ListAnswers(ctx context.Context, req *ListAnswersRequest) (*models.Page[*models.Answer], error)
	DeleteAnswer(ctx context.Context, req *DeleteAnswerRequest) error
}

// UserService defines user profile and collection operations
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, clerkID string) (*models.User, error)
	UpdateUser(ctx context.Context, req *UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, clerkID string) error
	ListUsers(ctx context.Context, req *ListUsersRequest) (*models.Page[*models.User], error)

	ToggleSaveQuestion(ctx context.Context, req *ToggleSaveRequest) (bool, error)
	SavedQuestions(ctx context.Context, req *SavedQuestionsRequest) (*models.Page[*models.Question], error)

	UserInfo(ctx context.Context, clerkID string) (*models.UserInfo, error)
	UserQuestions(ctx context.Context, req *UserContentRequest) (*models.Page[*models.Question], error)
	UserAnswers(ctx context.Context, req *UserContentRequest) (*models.Page[*models.Answer], error)
}
