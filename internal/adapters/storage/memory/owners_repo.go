package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-tag-registry/internal/domain/owners"
)

type ownerRepo struct {
	mu     sync.RWMutex
	byUser map[string]owners.Owner
}

func NewOwnerRepo() owners.Repository {
	return &ownerRepo{
		byUser: make(map[string]owners.Owner),
	}
}

func (r *ownerRepo) Upsert(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.UserID) == "" {
		return errors.New("owner user id required")
	}
	r.byUser[o.UserID] = o
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, userID string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byUser[userID]
	if !ok {
		return owners.Owner{}, ErrNotFound
	}
	return o, nil
}
