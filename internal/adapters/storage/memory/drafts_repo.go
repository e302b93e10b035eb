package memory

import (
	"context"
	"strings"
	"sync"

	"pet-tag-registry/internal/domain/drafts"
)

type draftRepo struct {
	mu      sync.RWMutex
	byKey   map[string]drafts.Draft
	touched map[string]struct{}
}

func NewDraftRepo() drafts.Repository {
	return &draftRepo{
		byKey:   make(map[string]drafts.Draft),
		touched: make(map[string]struct{}),
	}
}

func draftKey(userID, formID string) string {
	return strings.TrimSpace(userID) + "/" + strings.TrimSpace(formID)
}

func (r *draftRepo) Save(ctx context.Context, d drafts.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := draftKey(d.UserID, d.FormID)
	r.byKey[key] = d
	r.touched[key] = struct{}{}
	return nil
}

func (r *draftRepo) Load(ctx context.Context, userID, formID string) (drafts.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byKey[draftKey(userID, formID)]
	if !ok {
		return drafts.Draft{}, drafts.ErrNotFound
	}
	return d, nil
}

// Clear borra el borrador pero conserva la marca de sesión tocada.
func (r *draftRepo) Clear(ctx context.Context, userID, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byKey, draftKey(userID, formID))
	return nil
}

func (r *draftRepo) Touched(ctx context.Context, userID, formID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.touched[draftKey(userID, formID)]
	return ok, nil
}
