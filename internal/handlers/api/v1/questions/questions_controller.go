// ===============================
// FILE: internal/handlers/api/v1/questions/questions_controller.go
// ===============================

package questions

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devflow/internal/contextutils"
	"devflow/internal/models"
	"devflow/internal/response"
	"devflow/internal/services"
)

// QuestionController handles question, answer-listing and vote endpoints
type QuestionController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewQuestionController creates a new question controller
func NewQuestionController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *QuestionController {
	return &QuestionController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Routes mounts the question endpoints
func (c *QuestionController) Routes(r chi.Router) {
	r.Get("/", c.ListQuestions)
	r.Post("/", c.CreateQuestion)
	r.Get("/hot", c.HotQuestions)
	r.Get("/recommended", c.RecommendedQuestions)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", c.GetQuestion)
		r.Patch("/", c.EditQuestion)
		r.Delete("/", c.DeleteQuestion)
		r.Post("/view", c.ViewQuestion)
		r.Post("/vote", c.VoteQuestion)
		r.Post("/save", c.ToggleSave)
		r.Get("/answers", c.ListAnswers)
		r.Post("/answers", c.CreateAnswer)
	})
}

// ===============================
// QUESTION LIFECYCLE
// ===============================

// ListQuestions handles GET /api/v1/questions
func (c *QuestionController) ListQuestions(w http.ResponseWriter, r *http.Request) {
	search, sort, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	spec, unanswered, err := models.ParseQuestionListing(string(sort))
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.InvalidInputError("sort", err.Error()))
		return
	}

	result, err := c.serviceCollection.QuestionService.ListQuestions(r.Context(), &services.ListQuestionsRequest{
		Filter: models.FilterSpec{Search: search, UnansweredOnly: unanswered},
		Sort:   spec,
		Page:   page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// CreateQuestion handles POST /api/v1/questions
func (c *QuestionController) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req services.CreateQuestionRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.AuthorID = contextutils.GetClerkID(r.Context())

	question, err := c.serviceCollection.QuestionService.CreateQuestion(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, question)
}

// GetQuestion handles GET /api/v1/questions/{id}
func (c *QuestionController) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := c.serviceCollection.QuestionService.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, question)
}

// EditQuestion handles PATCH /api/v1/questions/{id}
func (c *QuestionController) EditQuestion(w http.ResponseWriter, r *http.Request) {
	var req services.EditQuestionRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.QuestionID = chi.URLParam(r, "id")
	req.ActorID = contextutils.GetClerkID(r.Context())

	question, err := c.serviceCollection.QuestionService.EditQuestion(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, question)
}

// DeleteQuestion handles DELETE /api/v1/questions/{id}
func (c *QuestionController) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	req := services.DeleteQuestionRequest{
		QuestionID: chi.URLParam(r, "id"),
		ActorID:    contextutils.GetClerkID(r.Context()),
		Path:       r.URL.Query().Get("path"),
	}

	if err := c.serviceCollection.QuestionService.DeleteQuestion(r.Context(), &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteNoContent(w, r)
}

// ViewQuestion handles POST /api/v1/questions/{id}/view
func (c *QuestionController) ViewQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := c.serviceCollection.QuestionService.ViewQuestion(r.Context(), &services.ViewQuestionRequest{
		QuestionID: chi.URLParam(r, "id"),
		ViewerID:   contextutils.GetClerkID(r.Context()),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, question)
}

// HotQuestions handles GET /api/v1/questions/hot
func (c *QuestionController) HotQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := c.serviceCollection.QuestionService.HotQuestions(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, questions)
}

// RecommendedQuestions handles GET /api/v1/questions/recommended
func (c *QuestionController) RecommendedQuestions(w http.ResponseWriter, r *http.Request) {
	search, _, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.RecommendationService.Recommend(r.Context(), &services.RecommendRequest{
		ClerkID: contextutils.GetClerkID(r.Context()),
		Search:  search,
		Page:    page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// ===============================
// VOTES AND COLLECTIONS
// ===============================

// VoteQuestion handles POST /api/v1/questions/{id}/vote
func (c *QuestionController) VoteQuestion(w http.ResponseWriter, r *http.Request) {
	var req services.VoteRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.Kind = models.VoteOnQuestion
	req.ItemID = chi.URLParam(r, "id")
	req.VoterID = contextutils.GetClerkID(r.Context())

	result, err := c.serviceCollection.VoteService.Vote(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// ToggleSave handles POST /api/v1/questions/{id}/save
func (c *QuestionController) ToggleSave(w http.ResponseWriter, r *http.Request) {
	var req services.ToggleSaveRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.QuestionID = chi.URLParam(r, "id")
	req.ClerkID = contextutils.GetClerkID(r.Context())

	saved, err := c.serviceCollection.UserService.ToggleSaveQuestion(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"question_id": req.QuestionID,
		"saved":       saved,
	})
}

// ===============================
// ANSWERS
// ===============================

// ListAnswers handles GET /api/v1/questions/{id}/answers
func (c *QuestionController) ListAnswers(w http.ResponseWriter, r *http.Request) {
	_, sort, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.AnswerService.ListAnswers(r.Context(), &services.ListAnswersRequest{
		QuestionID: chi.URLParam(r, "id"),
		Sort:       sort,
		Page:       page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// CreateAnswer handles POST /api/v1/questions/{id}/answers
func (c *QuestionController) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAnswerRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.QuestionID = chi.URLParam(r, "id")
	req.AuthorID = contextutils.GetClerkID(r.Context())

	answer, err := c.serviceCollection.AnswerService.CreateAnswer(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Answer posted via API",
		zap.String("answer_id", answer.ID.String()),
		zap.String("question_id", req.QuestionID),
	)
	c.responseBuilder.WriteCreated(w, r, answer)
}
