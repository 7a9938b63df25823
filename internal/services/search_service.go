package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories"
)

type searchService struct {
	store       *repositories.Store
	globalLimit int64
	typedLimit  int64
	logger      *zap.Logger
}

// NewSearchService creates the search aggregator
func NewSearchService(store *repositories.Store, cfg *config.Config, logger *zap.Logger) SearchService {
	return &searchService{
		store:       store,
		globalLimit: int64(cfg.Engine.GlobalSearchLimit),
		typedLimit:  int64(cfg.Engine.TypedSearchLimit),
		logger:      logger,
	}
}

// Search matches query against one kind when kind is recognized, and
// against every kind in the fixed order otherwise
func (s *searchService) Search(ctx context.Context, query, kind string) ([]models.SearchResult, error) {
	if k, ok := models.ParseSearchKind(strings.ToLower(strings.TrimSpace(kind))); ok {
		return s.searchKind(ctx, query, k, s.typedLimit)
	}

	results := make([]models.SearchResult, 0, int(s.globalLimit)*len(models.SearchKinds))
	for _, k := range models.SearchKinds {
		found, err := s.searchKind(ctx, query, k, s.globalLimit)
		if err != nil {
			return nil, err
		}
		results = append(results, found...)
	}
	return results, nil
}

// SearchKind matches query against exactly one kind
func (s *searchService) SearchKind(ctx context.Context, query, kind string) ([]models.SearchResult, error) {
	k, ok := models.ParseSearchKind(strings.ToLower(strings.TrimSpace(kind)))
	if !ok {
		return nil, NewInvalidSearchTypeError(kind)
	}
	return s.searchKind(ctx, query, k, s.typedLimit)
}

func (s *searchService) searchKind(ctx context.Context, query string, kind models.SearchKind, limit int64) ([]models.SearchResult, error) {
	opts := repositories.FindOptions{Sort: models.SortNewest, Limit: limit}
	var results []models.SearchResult

	switch kind {
	case models.SearchQuestion:
		questions, err := s.store.Questions.Find(ctx, repositories.QuestionQuery{Search: query}, opts)
		if err != nil {
			return nil, searchError(kind, err)
		}
		for _, q := range questions {
			results = append(results, models.SearchResult{Title: q.Title, Type: kind, ID: q.ID.String()})
		}

	case models.SearchUser:
		users, err := s.store.Users.Find(ctx, repositories.UserQuery{Search: query, NameOnly: true}, opts)
		if err != nil {
			return nil, searchError(kind, err)
		}
		for _, u := range users {
			results = append(results, models.SearchResult{Title: u.Name, Type: kind, ID: u.ClerkID})
		}

	case models.SearchAnswer:
		answers, err := s.store.Answers.Find(ctx, repositories.AnswerQuery{Search: query}, opts)
		if err != nil {
			return nil, searchError(kind, err)
		}
		for _, a := range answers {
			results = append(results, models.SearchResult{
				Title: fmt.Sprintf("Answer containing %s", query),
				Type:  kind,
				ID:    a.Question.String(),
			})
		}

	case models.SearchTag:
		tags, err := s.store.Tags.Find(ctx, repositories.TagQuery{Search: query}, repositories.FindOptions{Sort: models.SortName, Limit: limit})
		if err != nil {
			return nil, searchError(kind, err)
		}
		for _, t := range tags {
			results = append(results, models.SearchResult{Title: t.Name, Type: kind, ID: t.ID.String()})
		}
	}

	if results == nil {
		results = []models.SearchResult{}
	}
	s.logger.Debug("Search completed",
		zap.String("kind", string(kind)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func searchError(kind models.SearchKind, err error) error {
	return NewInternalError(fmt.Sprintf("failed to search %ss", kind), err)
}
