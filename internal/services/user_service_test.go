package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

func strPtr(s string) *string { return &s }

func TestCreateUser_RejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	_, err := f.sc.UserService.CreateUser(f.ctx, &CreateUserRequest{
		ClerkID: "alice", Name: "Alice Again", Username: "another_alice", Email: "alice2@devflow.test",
	})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrTypeConflict))

	_, err = f.sc.UserService.CreateUser(f.ctx, &CreateUserRequest{ClerkID: "bob", Name: "Bob", Username: "bob", Email: "nope"})
	assert.True(t, IsValidationError(err))
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	updated, err := f.sc.UserService.UpdateUser(f.ctx, &UpdateUserRequest{
		ClerkID:   "alice",
		Bio:       strPtr("I write Go services all day."),
		Portfolio: strPtr("https://alice.dev"),
		Path:      "/profile/alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "I write Go services all day.", updated.Bio)
	assert.Equal(t, "https://alice.dev", updated.Portfolio)
	assert.Equal(t, "Name alice", updated.Name)
	assert.Equal(t, []string{"/profile/alice"}, f.hook.Paths())

	_, err = f.sc.UserService.UpdateUser(f.ctx, &UpdateUserRequest{ClerkID: "alice", Portfolio: strPtr("not a url")})
	require.Error(t, err)
	se := GetServiceError(err)
	assert.Equal(t, ErrTypeValidation, se.Type)
	assert.Contains(t, se.Details["fields"], "portfolio_website")

	_, err = f.sc.UserService.UpdateUser(f.ctx, &UpdateUserRequest{ClerkID: "alice", Bio: strPtr("short")})
	assert.True(t, IsValidationError(err))

	_, err = f.sc.UserService.UpdateUser(f.ctx, &UpdateUserRequest{Bio: strPtr("long enough bio")})
	assert.True(t, IsUnauthenticatedError(err))

	_, err = f.sc.UserService.UpdateUser(f.ctx, &UpdateUserRequest{ClerkID: "ghost", Bio: strPtr("long enough bio")})
	assert.True(t, IsNotFoundError(err))
}

func TestToggleSave_TwiceRestoresSavedSet(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "reader")
	q := f.question(t, "author", "Worth saving", "go")

	saved, err := f.sc.UserService.ToggleSaveQuestion(f.ctx, &ToggleSaveRequest{ClerkID: "reader", QuestionID: q.ID.String()})
	require.NoError(t, err)
	assert.True(t, saved)

	page, err := f.sc.UserService.SavedQuestions(f.ctx, &SavedQuestionsRequest{ClerkID: "reader"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, q.ID, page.Items[0].ID)

	saved, err = f.sc.UserService.ToggleSaveQuestion(f.ctx, &ToggleSaveRequest{ClerkID: "reader", QuestionID: q.ID.String()})
	require.NoError(t, err)
	assert.False(t, saved)

	reader, err := f.sc.UserService.GetUser(f.ctx, "reader")
	require.NoError(t, err)
	assert.Empty(t, reader.Saved)

	_, err = f.sc.UserService.ToggleSaveQuestion(f.ctx, &ToggleSaveRequest{QuestionID: q.ID.String()})
	assert.True(t, IsUnauthenticatedError(err))

	_, err = f.sc.UserService.ToggleSaveQuestion(f.ctx, &ToggleSaveRequest{ClerkID: "reader", QuestionID: models.NewID().String()})
	assert.True(t, IsNotFoundError(err))
}

func TestUserInfoAndContent(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "reader")
	q1 := f.question(t, "author", "First question", "go")
	q2 := f.question(t, "author", "Second question", "go")
	f.answer(t, "author", q1.ID)

	_, err := f.sc.QuestionService.ViewQuestion(f.ctx, &ViewQuestionRequest{QuestionID: q2.ID.String()})
	require.NoError(t, err)

	info, err := f.sc.UserService.UserInfo(f.ctx, "author")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.TotalQuestions)
	assert.Equal(t, int64(1), info.TotalAnswers)

	questions, err := f.sc.UserService.UserQuestions(f.ctx, &UserContentRequest{ClerkID: "author"})
	require.NoError(t, err)
	require.Len(t, questions.Items, 2)
	assert.Equal(t, q2.ID, questions.Items[0].ID)

	answers, err := f.sc.UserService.UserAnswers(f.ctx, &UserContentRequest{ClerkID: "author"})
	require.NoError(t, err)
	assert.Len(t, answers.Items, 1)

	_, err = f.sc.UserService.UserInfo(f.ctx, "")
	assert.True(t, IsValidationError(err))
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")
	f.user(t, "bobby")
	f.user(t, "carol")
	f.question(t, "carol", "Carol asks", "go")

	top, err := f.sc.UserService.ListUsers(f.ctx, &ListUsersRequest{Sort: models.SortTopContributors})
	require.NoError(t, err)
	require.Len(t, top.Items, 3)
	assert.Equal(t, "carol", top.Items[0].ClerkID)
	assert.Equal(t, 10, top.PageSize)

	searched, err := f.sc.UserService.ListUsers(f.ctx, &ListUsersRequest{Search: "user_bob"})
	require.NoError(t, err)
	require.Len(t, searched.Items, 1)
	assert.Equal(t, "bobby", searched.Items[0].ClerkID)

	aliased, err := f.sc.UserService.ListUsers(f.ctx, &ListUsersRequest{Sort: "old_users"})
	require.NoError(t, err)
	assert.Len(t, aliased.Items, 3)
}

func TestDeleteUser_CascadesQuestions(t *testing.T) {
	f := newFixture(t)
	f.user(t, "author")
	f.user(t, "reader")
	q := f.question(t, "author", "Author question", "go")
	f.answer(t, "reader", q.ID)
	readerQ := f.question(t, "reader", "Reader question", "go")
	f.answer(t, "author", readerQ.ID)

	require.NoError(t, f.sc.UserService.DeleteUser(f.ctx, "author"))

	_, err := f.sc.UserService.GetUser(f.ctx, "author")
	assert.True(t, IsNotFoundError(err))
	_, err = f.sc.QuestionService.GetQuestion(f.ctx, q.ID.String())
	assert.True(t, IsNotFoundError(err))

	answers, err := f.sc.Store.Answers.Count(f.ctx, repositories.AnswerQuery{Question: q.ID})
	require.NoError(t, err)
	assert.Zero(t, answers)

	// The author's answer on someone else's question is kept
	kept, err := f.sc.Store.Answers.Count(f.ctx, repositories.AnswerQuery{Question: readerQ.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), kept)
}
