// file: internal/services/types.go
package services

import (
	"devflow/internal/models"
)

// ===============================
// VOTE TYPES
// ===============================

// VoteRequest carries one button press together with the caller's current
// vote state on the item
type VoteRequest struct {
	Kind         models.VoteKind      `json:"kind"`
	ItemID       string               `json:"item_id"`
	VoterID      string               `json:"-"` // identity provider subject
	Direction    models.VoteDirection `json:"direction"`
	HasUpvoted   bool                 `json:"has_upvoted"`
	HasDownvoted bool                 `json:"has_downvoted"`
	Path         string               `json:"path"`
}

// VoteResult is the item's vote state after the transition
type VoteResult struct {
	ItemID      models.ID        `json:"item_id"`
	State       models.VoteState `json:"state"`
	Upvotes     int              `json:"upvotes"`
	Downvotes   int              `json:"downvotes"`
	VoterDelta  int64            `json:"voter_delta"`
	AuthorDelta int64            `json:"author_delta"`
}

// ===============================
// QUESTION TYPES
// ===============================

// CreateQuestionRequest represents a request to ask a question
type CreateQuestionRequest struct {
	Title    string   `json:"title" validate:"required,notblank,min=5,max=130"`
	Content  string   `json:"content" validate:"required,min=100"`
	Tags     []string `json:"tags" validate:"required,min=1,max=3,dive,required,notblank,max=15"`
	AuthorID string   `json:"-"`
	Path     string   `json:"path,omitempty"`
}

// EditQuestionRequest replaces a question's title and content
type EditQuestionRequest struct {
	QuestionID string `json:"-"`
	Title      string `json:"title" validate:"required,notblank,min=5,max=130"`
	Content    string `json:"content" validate:"required,min=100"`
	ActorID    string `json:"-"`
	Path       string `json:"path,omitempty"`
}

// DeleteQuestionRequest removes a question and everything hanging off it.
// Only the question's author may delete it.
type DeleteQuestionRequest struct {
	QuestionID string `json:"-"`
	ActorID    string `json:"-"`
	Path       string `json:"path,omitempty"`
}

// ListQuestionsRequest selects a window of the question listing
type ListQuestionsRequest struct {
	Filter models.FilterSpec  `json:"filter"`
	Sort   models.SortSpec    `json:"sort"`
	Page   models.PageRequest `json:"page"`
}

// ViewQuestionRequest records one view. ViewerID is optional.
type ViewQuestionRequest struct {
	QuestionID string `json:"-"`
	ViewerID   string `json:"-"`
}

// ===============================
// ANSWER TYPES
// ===============================

// CreateAnswerRequest represents a request to answer a question
type CreateAnswerRequest struct {
	QuestionID string `json:"-"`
	Content    string `json:"content" validate:"required,min=100"`
	AuthorID   string `json:"-"`
	Path       string `json:"path,omitempty"`
}

// ListAnswersRequest selects a window of one question's answers
type ListAnswersRequest struct {
	QuestionID string             `json:"-"`
	Sort       models.SortSpec    `json:"sort"`
	Page       models.PageRequest `json:"page"`
}

// DeleteAnswerRequest removes one answer
type DeleteAnswerRequest struct {
	AnswerID string `json:"-"`
	ActorID  string `json:"-"`
	Path     string `json:"path,omitempty"`
}

// ===============================
// TAG TYPES
// ===============================

// ListTagsRequest selects a window of populated tags
type ListTagsRequest struct {
	Search string             `json:"search"`
	Sort   models.SortSpec    `json:"sort"`
	Page   models.PageRequest `json:"page"`
}

// TagQuestionsRequest selects a window of the questions carrying a tag
type TagQuestionsRequest struct {
	TagID  string             `json:"-"`
	Search string             `json:"search"`
	Page   models.PageRequest `json:"page"`
}

// TagQuestionsPage is a tag's name together with one window of its questions
type TagQuestionsPage struct {
	TagName string `json:"tag_name"`
	*models.Page[*models.Question]
}

// ===============================
// RECOMMENDATION TYPES
// ===============================

// RecommendRequest selects a window of the caller's recommended questions
type RecommendRequest struct {
	ClerkID string             `json:"-"`
	Search  string             `json:"search"`
	Page    models.PageRequest `json:"page"`
}

// ===============================
// USER TYPES
// ===============================

// CreateUserRequest registers a profile for an identity provider subject
type CreateUserRequest struct {
	ClerkID  string `json:"clerk_id" validate:"required,notblank"`
	Name     string `json:"name" validate:"required,min=5,max=50"`
	Username string `json:"username" validate:"required,min=5,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Picture  string `json:"picture" validate:"omitempty,url"`
}

// UpdateUserRequest edits profile fields. Nil fields are left unchanged.
type UpdateUserRequest struct {
	ClerkID   string  `json:"-"`
	Name      *string `json:"name" validate:"omitempty,min=5,max=50"`
	Username  *string `json:"username" validate:"omitempty,min=5,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,min=10,max=150"`
	Portfolio *string `json:"portfolio_website" validate:"omitempty,url"`
	Location  *string `json:"location" validate:"omitempty,min=5,max=50"`
	Picture   *string `json:"picture" validate:"omitempty,url"`
	Path      string  `json:"path,omitempty"`
}

// ListUsersRequest selects a window of the community listing
type ListUsersRequest struct {
	Search string             `json:"search"`
	Sort   models.SortSpec    `json:"sort"`
	Page   models.PageRequest `json:"page"`
}

// ToggleSaveRequest saves or unsaves a question for a user
type ToggleSaveRequest struct {
	ClerkID    string `json:"-"`
	QuestionID string `json:"-"`
	Path       string `json:"path,omitempty"`
}

// SavedQuestionsRequest selects a window of a user's saved questions
type SavedQuestionsRequest struct {
	ClerkID string             `json:"-"`
	Search  string             `json:"search"`
	Sort    models.SortSpec    `json:"sort"`
	Page    models.PageRequest `json:"page"`
}

// UserContentRequest selects a window of a user's questions or answers
type UserContentRequest struct {
	ClerkID string             `json:"-"`
	Page    models.PageRequest `json:"page"`
}
