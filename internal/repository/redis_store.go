package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/financing-engine/internal/domain"
)

// redisStore keeps the serialized collection as a single value under a
// fixed key. Same contract as the Postgres store, different backend.
type redisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, namespace string) FinancingStore {
	return &redisStore{client: client, key: "financing:" + namespace}
}

func (s *redisStore) Load(ctx context.Context) ([]*domain.Financing, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*domain.Financing{}, nil
	}
	if err != nil {
		return nil, err
	}

	var financings []*domain.Financing
	if err := json.Unmarshal(payload, &financings); err != nil {
		return nil, err
	}
	return financings, nil
}

func (s *redisStore) Save(ctx context.Context, financings []*domain.Financing) error {
	payload, err := json.Marshal(financings)
	if err != nil {
		return err
	}
	// No expiry: this is the system of record for the collection.
	return s.client.Set(ctx, s.key, payload, 0).Err()
}
