// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"errors"

	"devflow/internal/models"
)

// Store errors. Implementations wrap these so callers can use errors.Is.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ===============================
// QUERY SHAPES
// ===============================

// FindOptions selects the window and ordering of a listing. Every ordering
// ends with an _id key so windows are stable: descending for SortNewest,
// ascending otherwise.
type FindOptions struct {
	Sort  models.SortSpec
	Skip  int64
	Limit int64
}

// QuestionQuery is the predicate of a question listing. Zero-valued fields
// do not constrain the result.
type QuestionQuery struct {
	// Search matches the title, and the content too when SearchContent is set
	Search         string
	SearchContent  bool
	UnansweredOnly bool
	Author         models.ID
	ExcludeAuthor  models.ID
	TagsAny        []models.ID
	// RestrictIDs limits results to IDs, even when IDs is empty
	RestrictIDs bool
	IDs         []models.ID
}

// AnswerQuery is the predicate of an answer listing
type AnswerQuery struct {
	Question models.ID
	Author   models.ID
	Search   string
}

// TagQuery is the predicate of a tag listing
type TagQuery struct {
	Search        string
	PopulatedOnly bool
}

// UserQuery is the predicate of a user listing
type UserQuery struct {
	Search string
	// NameOnly restricts Search to the display name
	NameOnly bool
}

// InteractionQuery is the predicate of an interaction listing
type InteractionQuery struct {
	User     models.ID
	Question models.ID
	Action   models.InteractionAction
}

// UserProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type UserProfileUpdate struct {
	Name      *string
	Username  *string
	Bio       *string
	Portfolio *string
	Location  *string
	Picture   *string
}

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// VoteStore applies one vote transition as a single atomic update on an
// item's vote sets and returns the post-mutation sets. The voter is placed
// into the set matching state and removed from the other one.
type VoteStore interface {
	SetVote(ctx context.Context, itemID, voterID models.ID, state models.VoteState) (*models.VoteSets, error)
}

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id models.ID) (*models.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	UpdateProfile(ctx context.Context, clerkID string, update UserProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, id models.ID) error

	Find(ctx context.Context, q UserQuery, opts FindOptions) ([]*models.User, error)
	Count(ctx context.Context, q UserQuery) (int64, error)

	// IncrementReputation adds delta to the user's reputation atomically
	IncrementReputation(ctx context.Context, id models.ID, delta int64) error
	// ToggleSaved adds or removes questionID from the saved set in one
	// atomic update and reports whether it is saved afterwards
	ToggleSaved(ctx context.Context, userID, questionID models.ID) (bool, error)
	// PullSaved removes questionID from every user's saved set
	PullSaved(ctx context.Context, questionID models.ID) (int64, error)
}

// QuestionRepository defines the contract for question data operations
type QuestionRepository interface {
	VoteStore

	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id models.ID) (*models.Question, error)
	UpdateContent(ctx context.Context, id models.ID, title, content string) (*models.Question, error)
	Delete(ctx context.Context, id models.ID) error

	Find(ctx context.Context, q QuestionQuery, opts FindOptions) ([]*models.Question, error)
	Count(ctx context.Context, q QuestionQuery) (int64, error)

	AddTags(ctx context.Context, id models.ID, tagIDs []models.ID) error
	PushAnswer(ctx context.Context, id, answerID models.ID) error
	PullAnswer(ctx context.Context, id, answerID models.ID) error
	IncrementViews(ctx context.Context, id models.ID) (*models.Question, error)
}

// AnswerRepository defines the contract for answer data operations
type AnswerRepository interface {
	VoteStore

	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id models.ID) (*models.Answer, error)
	Delete(ctx context.Context, id models.ID) error
	DeleteByQuestion(ctx context.Context, questionID models.ID) (int64, error)

	Find(ctx context.Context, q AnswerQuery, opts FindOptions) ([]*models.Answer, error)
	Count(ctx context.Context, q AnswerQuery) (int64, error)
}

// TagRepository defines the contract for tag data operations
type TagRepository interface {
	// AttachQuestion finds the tag named name ignoring case, creating it
	// with that casing if absent, and adds questionID to its question set
	AttachQuestion(ctx context.Context, name string, questionID models.ID) (*models.Tag, error)
	GetByID(ctx context.Context, id models.ID) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []models.ID) ([]*models.Tag, error)
	PullQuestion(ctx context.Context, questionID models.ID) (int64, error)

	Find(ctx context.Context, q TagQuery, opts FindOptions) ([]*models.Tag, error)
	Count(ctx context.Context, q TagQuery) (int64, error)
}

// InteractionRepository defines the contract for the interaction log
type InteractionRepository interface {
	Create(ctx context.Context, interaction *models.Interaction) error
	// RecordView stores the single view interaction of a (user, question)
	// pair and reports whether it was newly created
	RecordView(ctx context.Context, userID, questionID models.ID, tags []models.ID) (bool, error)
	Count(ctx context.Context, q InteractionQuery) (int64, error)

	// DistinctTags returns the set of tag ids across the user's interactions
	DistinctTags(ctx context.Context, userID models.ID) ([]models.ID, error)
	// TopTags counts tag occurrences across the user's interactions, highest first
	TopTags(ctx context.Context, userID models.ID, limit int64) ([]models.TagCount, error)

	DeleteByQuestion(ctx context.Context, questionID models.ID) (int64, error)
	DeleteByAnswer(ctx context.Context, answerID models.ID) (int64, error)
	DeleteByUser(ctx context.Context, userID models.ID) (int64, error)
}

// Store bundles the repositories of one Content Store
type Store struct {
	Users        UserRepository
	Questions    QuestionRepository
	Answers      AnswerRepository
	Tags         TagRepository
	Interactions InteractionRepository

	// Ping reports the backing store's health
	Ping func(ctx context.Context) error
	// Close releases the backing store
	Close func(ctx context.Context) error
}

// Health pings the backing store when it supports it
func (s *Store) Health(ctx context.Context) error {
	if s.Ping == nil {
		return nil
	}
	return s.Ping(ctx)
}

// Shutdown closes the backing store when it supports it
func (s *Store) Shutdown(ctx context.Context) error {
	if s.Close == nil {
		return nil
	}
	return s.Close(ctx)
}
