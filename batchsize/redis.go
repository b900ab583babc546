package batchsize

import "context"
import "encoding/json"
import "path/filepath"

import "github.com/pkg/errors"
import "github.com/redis/go-redis/v9"

// RedisStore keeps the table as a JSON string under one key. It lets a
// single probing process hand its result to every replica of a later run.
type RedisStore struct {
	Client *redis.Client
	Key    string
}

// NewRedisStore returns a store whose key is derived from logDir, so that
// runs in different log directories never share a table.
func NewRedisStore(client *redis.Client, logDir string) *RedisStore {
	return &RedisStore{Client: client, Key: "stylish:" + filepath.Clean(logDir) + ":" + FileName}
}

func (r *RedisStore) Load(ctx context.Context) (map[string]int, error) {
	raw, err := r.Client.Get(ctx, r.Key).Result()
	if err == redis.Nil {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", r.Key)
	}
	var sizes map[string]int
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", r.Key)
	}
	if sizes == nil {
		sizes = map[string]int{}
	}
	return sizes, nil
}

func (r *RedisStore) Save(ctx context.Context, sizes map[string]int) error {
	data, err := json.Marshal(sizes)
	if err != nil {
		return err
	}
	return errors.Wrapf(r.Client.Set(ctx, r.Key, data, 0).Err(), "redis set %s", r.Key)
}
