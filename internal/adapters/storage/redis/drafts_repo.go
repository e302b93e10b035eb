package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pet-tag-registry/internal/domain/drafts"
)

const (
	// Los borradores duran días (storage durable); la marca de sesión
	// tocada expira sola con la sesión.
	draftTTL   = 7 * 24 * time.Hour
	touchedTTL = 12 * time.Hour
)

type draftRepo struct {
	rdb *redis.Client
}

// NewDraftRepo crea el draft cache durable sobre Redis.
func NewDraftRepo(rdb *redis.Client) drafts.Repository {
	return &draftRepo{rdb: rdb}
}

// Open conecta a Redis desde una URL (redis://...).
func Open(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return client, nil
}

func draftKey(userID, formID string) string {
	return "draft:" + userID + ":" + formID
}

func touchedKey(userID, formID string) string {
	return "draft_touched:" + userID + ":" + formID
}

type draftPayload struct {
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
}

func (r *draftRepo) Save(ctx context.Context, d drafts.Draft) error {
	b, err := json.Marshal(draftPayload{Payload: d.Payload, SavedAt: d.SavedAt})
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, draftKey(d.UserID, d.FormID), b, draftTTL)
	pipe.Set(ctx, touchedKey(d.UserID, d.FormID), "1", touchedTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *draftRepo) Load(ctx context.Context, userID, formID string) (drafts.Draft, error) {
	b, err := r.rdb.Get(ctx, draftKey(userID, formID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return drafts.Draft{}, drafts.ErrNotFound
	}
	if err != nil {
		return drafts.Draft{}, err
	}

	var p draftPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return drafts.Draft{}, err
	}

	return drafts.Draft{
		UserID:  userID,
		FormID:  formID,
		Payload: p.Payload,
		SavedAt: p.SavedAt,
	}, nil
}

// Clear borra el borrador; la marca de sesión tocada queda hasta su TTL.
func (r *draftRepo) Clear(ctx context.Context, userID, formID string) error {
	return r.rdb.Del(ctx, draftKey(userID, formID)).Err()
}

func (r *draftRepo) Touched(ctx context.Context, userID, formID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, touchedKey(userID, formID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
