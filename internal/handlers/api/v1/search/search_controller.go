package search

import (
	"net/http"

	"go.uber.org/zap"

	"devflow/internal/response"
	"devflow/internal/services"
)

// SearchController serves the global search box
type SearchController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewSearchController creates a new search controller
func NewSearchController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *SearchController {
	return &SearchController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Search handles GET /api/v1/search?q=&type=. Without a type every kind is
// searched; an explicit type must be one of the known kinds.
func (c *SearchController) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q, kind := query.Get(response.SearchParam), query.Get("type")

	search := c.serviceCollection.SearchService.Search
	if kind != "" {
		search = c.serviceCollection.SearchService.SearchKind
	}

	results, err := search(r.Context(), q, kind)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, results)
}
