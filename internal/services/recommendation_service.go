package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories"
)

type recommendationService struct {
	store    *repositories.Store
	pager    pager
	pageSize int
	logger   *zap.Logger
}

// NewRecommendationService creates the recommendation engine
func NewRecommendationService(store *repositories.Store, cfg *config.Config, logger *zap.Logger) RecommendationService {
	return &recommendationService{
		store:    store,
		pager:    newPager(cfg.Engine),
		pageSize: cfg.Engine.RecommendedPageSize,
		logger:   logger,
	}
}

// Recommend lists other authors' questions sharing a tag with anything the
// user interacted with. A user without tagged interactions gets an empty
// page, not a fallback feed.
func (s *recommendationService) Recommend(ctx context.Context, req *RecommendRequest) (*models.Page[*models.Question], error) {
	if req.ClerkID == "" {
		return nil, NewUnauthenticatedError("sign in to see recommendations")
	}
	page := s.pager.withDefault(req.Page, s.pageSize)

	user, err := resolveUser(ctx, s.store.Users, req.ClerkID)
	if err != nil {
		return nil, err
	}

	tagIDs, err := s.store.Interactions.DistinctTags(ctx, user.ID)
	if err != nil {
		return nil, NewInternalError("failed to collect interaction tags", err)
	}
	if len(tagIDs) == 0 {
		return models.EmptyPage[*models.Question](page), nil
	}

	q := repositories.QuestionQuery{
		Search:        strings.TrimSpace(req.Search),
		SearchContent: true,
		ExcludeAuthor: user.ID,
		TagsAny:       tagIDs,
	}
	result, err := Paginate(ctx, page,
		func(ctx context.Context) (int64, error) { return s.store.Questions.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Question, error) {
			return s.store.Questions.Find(ctx, q, repositories.FindOptions{Sort: models.SortNewest, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to load recommendations", err)
	}

	s.logger.Debug("Recommendations computed",
		zap.String("user_id", user.ID.String()),
		zap.Int("tag_count", len(tagIDs)),
		zap.Int64("total", result.Total),
	)
	return result, nil
}
