package tags

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devflow/internal/response"
	"devflow/internal/services"
)

// TagController handles tag listing endpoints
type TagController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewTagController creates a new tag controller
func NewTagController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *TagController {
	return &TagController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Routes mounts the tag endpoints
func (c *TagController) Routes(r chi.Router) {
	r.Get("/", c.ListTags)
	r.Get("/popular", c.PopularTags)
	r.Get("/{id}/questions", c.QuestionsForTag)
}

// ListTags handles GET /api/v1/tags
func (c *TagController) ListTags(w http.ResponseWriter, r *http.Request) {
	search, sort, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.TagService.ListTags(r.Context(), &services.ListTagsRequest{
		Search: search,
		Sort:   sort,
		Page:   page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// PopularTags handles GET /api/v1/tags/popular?limit=
func (c *TagController) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit := c.serviceCollection.Config.Engine.PopularTagsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.responseBuilder.WriteError(w, r, services.InvalidInputError("limit", "must be a non-negative integer"))
			return
		}
		limit = v
	}

	tags, err := c.serviceCollection.TagService.PopularTags(r.Context(), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, tags)
}

// QuestionsForTag handles GET /api/v1/tags/{id}/questions
func (c *TagController) QuestionsForTag(w http.ResponseWriter, r *http.Request) {
	search, _, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.TagService.QuestionsForTag(r.Context(), &services.TagQuestionsRequest{
		TagID:  chi.URLParam(r, "id"),
		Search: search,
		Page:   page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}
