package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pet-tag-registry/internal/domain/tags"
)

type tagRepo struct {
	mu   sync.RWMutex
	byID map[string]tags.Tag
}

func NewTagRepo() tags.Repository {
	return &tagRepo{
		byID: make(map[string]tags.Tag),
	}
}

func (r *tagRepo) Create(ctx context.Context, t tags.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("tag id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("tag already exists")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *tagRepo) GetByID(ctx context.Context, id string) (tags.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return tags.Tag{}, tags.ErrNotFound
	}
	return t, nil
}

// Activate hace el compare-and-set bajo el lock del repo: el false→true
// ocurre exactamente una vez aunque dos activaciones lleguen a la vez.
func (r *tagRepo) Activate(ctx context.Context, tagID, petID string, at time.Time) (tags.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[tagID]
	if !ok {
		return tags.Tag{}, tags.ErrNotFound
	}
	if t.Activated {
		return t, tags.ErrAlreadyActivated
	}

	t.Activated = true
	t.PetID = petID
	t.ActivatedAt = &at
	r.byID[tagID] = t
	return t, nil
}
