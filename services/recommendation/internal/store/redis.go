package store

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// hashKey is the single Redis hash holding the whole collection.
const hashKey = "RECOMMENDATION"

// RedisEngine stores entities as JSON values in one Redis hash keyed by
// entity id.
type RedisEngine struct {
	client *redis.Client
}

// NewRedisEngine creates an engine over the given client, verifying the
// connection first.
func NewRedisEngine(ctx context.Context, client *redis.Client) (*RedisEngine, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}
	return &RedisEngine{client: client}, nil
}

func (e *RedisEngine) Get(ctx context.Context, id string) (*Entity, error) {
	data, err := e.client.HGet(ctx, hashKey, id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get entity from Redis")
	}

	var entity Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal stored entity")
	}
	return &entity, nil
}

func (e *RedisEngine) Put(ctx context.Context, id string, entity *Entity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return errors.Wrap(err, "failed to marshal entity")
	}
	if err := e.client.HSet(ctx, hashKey, id, data).Err(); err != nil {
		return errors.Wrap(err, "failed to put entity in Redis")
	}
	return nil
}

func (e *RedisEngine) Values(ctx context.Context) ([]Entity, error) {
	raw, err := e.client.HVals(ctx, hashKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read entities from Redis")
	}

	entities := make([]Entity, 0, len(raw))
	for _, data := range raw {
		var entity Entity
		if err := json.Unmarshal([]byte(data), &entity); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal stored entity")
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (e *RedisEngine) Remove(ctx context.Context, id string) error {
	if err := e.client.HDel(ctx, hashKey, id).Err(); err != nil {
		return errors.Wrap(err, "failed to remove entity from Redis")
	}
	return nil
}

func (e *RedisEngine) Len(ctx context.Context) (int64, error) {
	n, err := e.client.HLen(ctx, hashKey).Result()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count entities in Redis")
	}
	return n, nil
}

func (e *RedisEngine) Has(ctx context.Context, id string) (bool, error) {
	ok, err := e.client.HExists(ctx, hashKey, id).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to check entity in Redis")
	}
	return ok, nil
}
