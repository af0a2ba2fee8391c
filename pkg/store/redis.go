package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/item-service/pkg/item"
)

const backendRedis = "redis"

// ErrInvalidEntry indicates a stored value could not be decoded.
var ErrInvalidEntry = errors.New("invalid stored item")

// RedisStore persists items as JSON values in Redis.
//
// Every write touches the item key and the ID index inside one MULTI/EXEC
// transaction, so concurrent saves of the same ID are applied one after the
// other by Redis itself.
type RedisStore struct {
	redis *redis.Client
	keys  keys
}

// NewRedisStore creates a Redis-backed store. An empty prefix uses DefaultKeyPrefix.
func NewRedisStore(redisClient *redis.Client, prefix string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		keys:  newKeys(prefix),
	}
}

// ListIDs returns all IDs from the index in ascending order.
func (s *RedisStore) ListIDs(ctx context.Context) ([]int64, error) {
	StoreOperations.WithLabelValues(backendRedis, "list_ids").Inc()

	members, err := s.redis.ZRange(ctx, s.keys.index(), 0, -1).Result()
	if err != nil {
		StoreErrors.WithLabelValues(backendRedis, "list_ids").Inc()
		return nil, fmt.Errorf("redis zrange: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			StoreErrors.WithLabelValues(backendRedis, "list_ids").Inc()
			return nil, fmt.Errorf("%w: index member %q", ErrInvalidEntry, m)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FindByID loads one item. Returns ErrNotFound if the key doesn't exist.
func (s *RedisStore) FindByID(ctx context.Context, id int64) (item.Item, error) {
	StoreOperations.WithLabelValues(backendRedis, "find").Inc()

	data, err := s.redis.Get(ctx, s.keys.item(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return item.Item{}, ErrNotFound
		}
		StoreErrors.WithLabelValues(backendRedis, "find").Inc()
		return item.Item{}, fmt.Errorf("redis get: %w", err)
	}

	var it item.Item
	if err := json.Unmarshal(data, &it); err != nil {
		StoreErrors.WithLabelValues(backendRedis, "find").Inc()
		return item.Item{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return it, nil
}

// FindAll loads every indexed item in ascending ID order.
// IDs removed between the index read and the MGET are skipped.
func (s *RedisStore) FindAll(ctx context.Context) ([]item.Item, error) {
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	StoreOperations.WithLabelValues(backendRedis, "find_all").Inc()

	if len(ids) == 0 {
		return []item.Item{}, nil
	}

	itemKeys := make([]string, len(ids))
	for i, id := range ids {
		itemKeys[i] = s.keys.item(id)
	}

	values, err := s.redis.MGet(ctx, itemKeys...).Result()
	if err != nil {
		StoreErrors.WithLabelValues(backendRedis, "find_all").Inc()
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	all := make([]item.Item, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var it item.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			StoreErrors.WithLabelValues(backendRedis, "find_all").Inc()
			return nil, fmt.Errorf("%w: key %s: %v", ErrInvalidEntry, itemKeys[i], err)
		}
		all = append(all, it)
	}
	return all, nil
}

// advanceSeq raises the sequence to ARGV[1] if it is lower.
const advanceSeq = `
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
if tonumber(ARGV[1]) > cur then
	redis.call('SET', KEYS[1], ARGV[1])
end
return 0
`

// Save writes it and indexes its ID, assigning a new ID from the sequence
// when it has none. An explicit ID above the sequence advances it, so
// assigned IDs never collide with stored ones.
func (s *RedisStore) Save(ctx context.Context, it item.Item) (item.Item, error) {
	StoreOperations.WithLabelValues(backendRedis, "save").Inc()

	if it.ID == 0 {
		id, err := s.redis.Incr(ctx, s.keys.sequence()).Result()
		if err != nil {
			StoreErrors.WithLabelValues(backendRedis, "save").Inc()
			return item.Item{}, fmt.Errorf("redis incr: %w", err)
		}
		it.ID = id
	}

	data, err := json.Marshal(it)
	if err != nil {
		StoreErrors.WithLabelValues(backendRedis, "save").Inc()
		return item.Item{}, fmt.Errorf("marshal item: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Eval(ctx, advanceSeq, []string{s.keys.sequence()}, it.ID)
		pipe.Set(ctx, s.keys.item(it.ID), data, 0)
		pipe.ZAdd(ctx, s.keys.index(), redis.Z{
			Score:  float64(it.ID),
			Member: strconv.FormatInt(it.ID, 10),
		})
		return nil
	})
	if err != nil {
		StoreErrors.WithLabelValues(backendRedis, "save").Inc()
		return item.Item{}, fmt.Errorf("redis save: %w", err)
	}

	return it, nil
}

// DeleteByID removes the item key and its index entry.
func (s *RedisStore) DeleteByID(ctx context.Context, id int64) error {
	StoreOperations.WithLabelValues(backendRedis, "delete").Inc()

	var del *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.keys.item(id))
		pipe.ZRem(ctx, s.keys.index(), strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		StoreErrors.WithLabelValues(backendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
