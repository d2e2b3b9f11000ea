package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JimmyUA/menu-master/internal/docstore"
)

// ErrNotFound is returned when no profile exists for a user.
var ErrNotFound = errors.New("profile not found")

// Repository persists user profiles in the document store.
type Repository struct {
	users docstore.Collection
}

// NewRepository creates a Repository over the given document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{users: store.Collection("users")}
}

// Save upserts a profile keyed by its user id.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	if err := r.users.Set(ctx, p.UserID, p); err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", p.UserID, err)
	}
	return nil
}

// Get retrieves a profile by user id, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	raw, err := r.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile for %s: %w", userID, err)
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile for %s: %w", userID, err)
	}
	return &p, nil
}

// All returns every stored profile, used by the batch menu job. Documents
// that fail to unmarshal are skipped rather than failing the whole batch.
func (r *Repository) All(ctx context.Context) ([]*Profile, error) {
	raws, err := r.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*Profile, 0, len(raws))
	for _, raw := range raws {
		var p Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}
