// Package memory is an in-process Content Store. Every operation runs under
// one lock, which gives each call the same single-document atomicity the
// MongoDB store provides. It backs tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

type state struct {
	mu           sync.RWMutex
	users        map[models.ID]*models.User
	questions    map[models.ID]*models.Question
	answers      map[models.ID]*models.Answer
	tags         map[models.ID]*models.Tag
	interactions map[models.ID]*models.Interaction
}

// NewStore creates an empty in-memory Content Store
func NewStore() *repositories.Store {
	s := &state{
		users:        make(map[models.ID]*models.User),
		questions:    make(map[models.ID]*models.Question),
		answers:      make(map[models.ID]*models.Answer),
		tags:         make(map[models.ID]*models.Tag),
		interactions: make(map[models.ID]*models.Interaction),
	}

	return &repositories.Store{
		Users:        &userRepository{s},
		Questions:    &questionRepository{s},
		Answers:      &answerRepository{s},
		Tags:         &tagRepository{s},
		Interactions: &interactionRepository{s},
		Ping:         func(context.Context) error { return nil },
		Close:        func(context.Context) error { return nil },
	}
}

// ===============================
// HELPERS
// ===============================

func contains(field, search string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(search))
}

func cloneIDs(ids []models.ID) []models.ID {
	out := make([]models.ID, len(ids))
	copy(out, ids)
	return out
}

func addToSet(ids []models.ID, id models.ID) []models.ID {
	if models.ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func pull(ids []models.ID, id models.ID) []models.ID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func intersects(a, b []models.ID) bool {
	for _, id := range a {
		if models.ContainsID(b, id) {
			return true
		}
	}
	return false
}

// now truncates to the millisecond precision MongoDB stores
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// sortKey is one comparison of an ordering. It returns <0, 0 or >0.
type sortKey[T any] func(a, b T) int

func byTime[T any](get func(T) time.Time, desc bool) sortKey[T] {
	return func(a, b T) int {
		c := get(a).Compare(get(b))
		if desc {
			return -c
		}
		return c
	}
}

func byInt[T any](get func(T) int64, desc bool) sortKey[T] {
	return func(a, b T) int {
		x, y := get(a), get(b)
		c := 0
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
		if desc {
			return -c
		}
		return c
	}
}

func byString[T any](get func(T) string) sortKey[T] {
	return func(a, b T) int {
		return strings.Compare(get(a), get(b))
	}
}

func byID[T any](get func(T) models.ID, desc bool) sortKey[T] {
	return func(a, b T) int {
		c := get(a).Compare(get(b))
		if desc {
			return -c
		}
		return c
	}
}

// window sorts items by keys and returns the slice selected by opts
func window[T any](items []T, opts repositories.FindOptions, keys ...sortKey[T]) []T {
	sort.SliceStable(items, func(i, j int) bool {
		for _, key := range keys {
			if c := key(items[i], items[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(items)) {
		items = items[:opts.Limit]
	}
	return items
}
