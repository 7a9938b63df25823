package answers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devflow/internal/contextutils"
	"devflow/internal/models"
	"devflow/internal/response"
	"devflow/internal/services"
)

// AnswerController handles endpoints addressing a single answer
type AnswerController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewAnswerController creates a new answer controller
func NewAnswerController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AnswerController {
	return &AnswerController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Routes mounts the answer endpoints
func (c *AnswerController) Routes(r chi.Router) {
	r.Delete("/{id}", c.DeleteAnswer)
	r.Post("/{id}/vote", c.VoteAnswer)
}

// DeleteAnswer handles DELETE /api/v1/answers/{id}
func (c *AnswerController) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	err := c.serviceCollection.AnswerService.DeleteAnswer(r.Context(), &services.DeleteAnswerRequest{
		AnswerID: chi.URLParam(r, "id"),
		ActorID:  contextutils.GetClerkID(r.Context()),
		Path:     r.URL.Query().Get("path"),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteNoContent(w, r)
}

// VoteAnswer handles POST /api/v1/answers/{id}/vote
func (c *AnswerController) VoteAnswer(w http.ResponseWriter, r *http.Request) {
	var req services.VoteRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.Kind = models.VoteOnAnswer
	req.ItemID = chi.URLParam(r, "id")
	req.VoterID = contextutils.GetClerkID(r.Context())

	result, err := c.serviceCollection.VoteService.Vote(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}
