package models

import (
	"fmt"
	"strings"
)

// SortSpec is a named ordering preset. Each listing accepts a subset.
type SortSpec string

const (
	SortNewest          SortSpec = "newest"
	SortOldest          SortSpec = "oldest"
	SortMostViewed      SortSpec = "most_viewed"
	SortMostVoted       SortSpec = "most_voted"
	SortMostAnswered    SortSpec = "most_answered"
	SortName            SortSpec = "name"
	SortPopular         SortSpec = "popular"
	SortTopContributors SortSpec = "top_contributors"
)

// Allowed sort presets per listing.
var (
	QuestionSorts = []SortSpec{SortNewest, SortOldest, SortMostViewed, SortMostVoted, SortMostAnswered}
	AnswerSorts   = []SortSpec{SortNewest, SortOldest, SortMostVoted}
	TagSorts      = []SortSpec{SortPopular, SortName, SortNewest, SortOldest}
	UserSorts     = []SortSpec{SortNewest, SortOldest, SortTopContributors}
)

// sortAliases maps filter names used by existing clients onto presets.
var sortAliases = map[string]SortSpec{
	"frequent":    SortMostViewed,
	"most_recent": SortNewest,
	"recent":      SortNewest,
	"new_users":   SortNewest,
	"old_users":   SortOldest,
	"old":         SortOldest,
}

// unansweredFilter is accepted wherever a question sort is, and selects the
// unanswered predicate with the default ordering.
const unansweredFilter = "unanswered"

// ParseSortSpec resolves raw against the allowed presets. An empty raw value
// yields fallback.
func ParseSortSpec(raw string, allowed []SortSpec, fallback SortSpec) (SortSpec, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback, nil
	}

	spec := SortSpec(raw)
	if alias, ok := sortAliases[raw]; ok {
		spec = alias
	}
	for _, a := range allowed {
		if a == spec {
			return spec, nil
		}
	}
	return "", fmt.Errorf("unsupported sort %q", raw)
}

// ParseQuestionListing resolves a question listing filter into a sort
// preset and the unanswered predicate.
func ParseQuestionListing(raw string) (SortSpec, bool, error) {
	if strings.EqualFold(strings.TrimSpace(raw), unansweredFilter) {
		return SortNewest, true, nil
	}
	spec, err := ParseSortSpec(raw, QuestionSorts, SortNewest)
	return spec, false, err
}

// FilterSpec narrows a listing. Search is a case-insensitive substring.
type FilterSpec struct {
	Search         string `json:"search,omitempty"`
	UnansweredOnly bool   `json:"unanswered_only,omitempty"`
}

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the request: page below 1 becomes 1, a non-positive size
// becomes defaultSize and sizes above maxSize are capped.
func (p PageRequest) Normalize(defaultSize, maxSize int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Skip is the number of records before the window. Never negative.
func (p PageRequest) Skip() int64 {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.PageSize)
}

// Page is one window of a listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"has_next"`
}

// EmptyPage is a page with no items and no successor.
func EmptyPage[T any](req PageRequest) *Page[T] {
	return &Page[T]{Items: []T{}, Page: req.Page, PageSize: req.PageSize}
}
