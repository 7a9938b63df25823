package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"devflow/internal/cache"
	"devflow/internal/config"
	"devflow/internal/models"
	"devflow/internal/repositories"
)

const popularTagsKeyPrefix = "tags:popular:"

type tagService struct {
	store  *repositories.Store
	cache  cache.Cache
	pager  pager
	ttl    time.Duration
	logger *zap.Logger
}

// NewTagService creates the tag & aggregation engine
func NewTagService(store *repositories.Store, c cache.Cache, cfg *config.Config, logger *zap.Logger) TagService {
	return &tagService{
		store:  store,
		cache:  c,
		pager:  newPager(cfg.Engine),
		ttl:    cfg.Cache.PopularTagsTTL,
		logger: logger,
	}
}

// normalizeTagNames trims names, drops empty ones and removes names that
// repeat an earlier one ignoring case. First-seen casing wins.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// AttachTags links a question to tags by name, creating missing tags. Safe
// to repeat with the same names.
func (s *tagService) AttachTags(ctx context.Context, questionID models.ID, names []string) ([]*models.Tag, error) {
	names = normalizeTagNames(names)
	if len(names) == 0 {
		return []*models.Tag{}, nil
	}

	tags := make([]*models.Tag, 0, len(names))
	tagIDs := make([]models.ID, 0, len(names))
	for _, name := range names {
		tag, err := s.store.Tags.AttachQuestion(ctx, name, questionID)
		if err != nil {
			return nil, NewInternalError("failed to attach tag", fmt.Errorf("tag %q: %w", name, err))
		}
		tags = append(tags, tag)
		if !models.ContainsID(tagIDs, tag.ID) {
			tagIDs = append(tagIDs, tag.ID)
		}
	}

	if err := s.store.Questions.AddTags(ctx, questionID, tagIDs); err != nil {
		return nil, storeError(err, "question", questionID)
	}

	s.invalidatePopular(ctx)
	s.logger.Debug("Tags attached",
		zap.String("question_id", questionID.String()),
		zap.Strings("tags", names),
	)
	return tags, nil
}

// PopularTags ranks populated tags by how many questions carry them
func (s *tagService) PopularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	if limit <= 0 {
		return []models.TagCount{}, nil
	}

	key := fmt.Sprintf("%s%d", popularTagsKeyPrefix, limit)
	return cache.GetOrLoad(ctx, s.cache, s.logger, key, s.ttl, func(ctx context.Context) ([]models.TagCount, error) {
		tags, err := s.store.Tags.Find(ctx,
			repositories.TagQuery{PopulatedOnly: true},
			repositories.FindOptions{Sort: models.SortPopular, Limit: int64(limit)},
		)
		if err != nil {
			return nil, NewInternalError("failed to load popular tags", err)
		}
		out := make([]models.TagCount, 0, len(tags))
		for _, t := range tags {
			out = append(out, models.TagCount{ID: t.ID, Name: t.Name, Count: int64(len(t.Questions))})
		}
		return out, nil
	})
}

func (s *tagService) invalidatePopular(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, popularTagsKeyPrefix); err != nil {
		s.logger.Warn("Failed to invalidate popular tags", zap.Error(err))
	}
}

// ListTags pages through tags that carry at least one question
func (s *tagService) ListTags(ctx context.Context, req *ListTagsRequest) (*models.Page[*models.Tag], error) {
	sort, err := resolveSort(req.Sort, models.TagSorts, models.SortPopular)
	if err != nil {
		return nil, err
	}
	page := s.pager.normalize(req.Page)
	q := repositories.TagQuery{Search: strings.TrimSpace(req.Search), PopulatedOnly: true}

	result, err := Paginate(ctx, page,
		func(ctx context.Context) (int64, error) { return s.store.Tags.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Tag, error) {
			return s.store.Tags.Find(ctx, q, repositories.FindOptions{Sort: sort, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list tags", err)
	}
	return result, nil
}

// QuestionsForTag pages through the questions of one tag, newest first
func (s *tagService) QuestionsForTag(ctx context.Context, req *TagQuestionsRequest) (*TagQuestionsPage, error) {
	tagID, err := parseID("tag_id", req.TagID)
	if err != nil {
		return nil, err
	}
	tag, err := s.store.Tags.GetByID(ctx, tagID)
	if err != nil {
		return nil, storeError(err, "tag", tagID)
	}

	q := repositories.QuestionQuery{
		Search:      strings.TrimSpace(req.Search),
		RestrictIDs: true,
		IDs:         tag.Questions,
	}
	result, err := Paginate(ctx, s.pager.normalize(req.Page),
		func(ctx context.Context) (int64, error) { return s.store.Questions.Count(ctx, q) },
		func(ctx context.Context, skip, limit int64) ([]*models.Question, error) {
			return s.store.Questions.Find(ctx, q, repositories.FindOptions{Sort: models.SortNewest, Skip: skip, Limit: limit})
		},
	)
	if err != nil {
		return nil, NewInternalError("failed to list tag questions", err)
	}
	return &TagQuestionsPage{TagName: tag.Name, Page: result}, nil
}

// TopInteractedTags returns the tags that occur most in a user's history
func (s *tagService) TopInteractedTags(ctx context.Context, clerkID string, limit int) ([]models.TagCount, error) {
	user, err := resolveUser(ctx, s.store.Users, clerkID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []models.TagCount{}, nil
	}

	counts, err := s.store.Interactions.TopTags(ctx, user.ID, int64(limit))
	if err != nil {
		return nil, NewInternalError("failed to aggregate interaction tags", err)
	}
	if len(counts) == 0 {
		return []models.TagCount{}, nil
	}

	ids := make([]models.ID, len(counts))
	for i, c := range counts {
		ids[i] = c.ID
	}
	tags, err := s.store.Tags.GetByIDs(ctx, ids)
	if err != nil {
		return nil, NewInternalError("failed to load tags", err)
	}
	names := make(map[models.ID]string, len(tags))
	for _, t := range tags {
		names[t.ID] = t.Name
	}

	// Tags deleted since the interaction was logged are dropped
	out := make([]models.TagCount, 0, len(counts))
	for _, c := range counts {
		name, ok := names[c.ID]
		if !ok {
			continue
		}
		c.Name = name
		out = append(out, c)
	}
	return out, nil
}
