package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devflow/internal/models"
	"devflow/internal/repositories"
)

type userRepository struct {
	s *state
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Saved = cloneIDs(u.Saved)
	return &c
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.ClerkID == user.ClerkID {
			return fmt.Errorf("user clerk id %q: %w", user.ClerkID, repositories.ErrDuplicate)
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return fmt.Errorf("username %q: %w", user.Username, repositories.ErrDuplicate)
		}
	}

	if user.ID.IsZero() {
		user.ID = models.NewID()
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now()
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id models.ID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) byClerkID(clerkID string) *models.User {
	for _, u := range r.s.users {
		if u.ClerkID == clerkID {
			return u
		}
	}
	return nil
}

func (r *userRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u := r.byClerkID(clerkID)
	if u == nil {
		return nil, fmt.Errorf("user clerk id %q: %w", clerkID, repositories.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, clerkID string, update repositories.UserProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u := r.byClerkID(clerkID)
	if u == nil {
		return nil, fmt.Errorf("user clerk id %q: %w", clerkID, repositories.ErrNotFound)
	}
	if update.Username != nil {
		for _, other := range r.s.users {
			if other.ID != u.ID && strings.EqualFold(other.Username, *update.Username) {
				return nil, fmt.Errorf("username %q: %w", *update.Username, repositories.ErrDuplicate)
			}
		}
		u.Username = *update.Username
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Portfolio != nil {
		u.Portfolio = *update.Portfolio
	}
	if update.Location != nil {
		u.Location = *update.Location
	}
	if update.Picture != nil {
		u.Picture = *update.Picture
	}
	return cloneUser(u), nil
}

func (r *userRepository) Delete(ctx context.Context, id models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) matching(q repositories.UserQuery) []*models.User {
	var out []*models.User
	for _, u := range r.s.users {
		if q.Search != "" {
			hit := contains(u.Name, q.Search)
			if !hit && !q.NameOnly {
				hit = contains(u.Username, q.Search)
			}
			if !hit {
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

func userKeys(spec models.SortSpec) []sortKey[*models.User] {
	joinedAt := func(u *models.User) time.Time { return u.JoinedAt }
	id := func(u *models.User) models.ID { return u.ID }

	switch spec {
	case models.SortOldest:
		return []sortKey[*models.User]{byTime(joinedAt, false), byID(id, false)}
	case models.SortTopContributors:
		return []sortKey[*models.User]{byInt(func(u *models.User) int64 { return u.Reputation }, true), byID(id, false)}
	default:
		return []sortKey[*models.User]{byTime(joinedAt, true), byID(id, true)}
	}
}

func (r *userRepository) Find(ctx context.Context, q repositories.UserQuery, opts repositories.FindOptions) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	found := window(r.matching(q), opts, userKeys(opts.Sort)...)
	out := make([]*models.User, len(found))
	for i, u := range found {
		out[i] = cloneUser(u)
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context, q repositories.UserQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.matching(q))), nil
}

func (r *userRepository) IncrementReputation(ctx context.Context, id models.ID, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	u.Reputation += delta
	return nil
}

func (r *userRepository) ToggleSaved(ctx context.Context, userID, questionID models.ID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return false, fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
	}
	if models.ContainsID(u.Saved, questionID) {
		u.Saved = pull(u.Saved, questionID)
		return false, nil
	}
	u.Saved = append(u.Saved, questionID)
	return true, nil
}

func (r *userRepository) PullSaved(ctx context.Context, questionID models.ID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var modified int64
	for _, u := range r.s.users {
		if models.ContainsID(u.Saved, questionID) {
			u.Saved = pull(u.Saved, questionID)
			modified++
		}
	}
	return modified, nil
}
