package dataset

import "context"
import "encoding/json"
import "os"
import "path/filepath"
import "strconv"

import "github.com/pkg/errors"
import "github.com/redis/go-redis/v9"

// DurationCache remembers wave lengths between runs so the full scan of the
// corpus is paid once.
type DurationCache interface {
	Load(ctx context.Context) (map[string]int, error)
	Save(ctx context.Context, durations map[string]int) error
}

// DurationsFileName is the cache file kept next to the batch size table.
const DurationsFileName = "durations.json"

// FileCache stores durations as JSON keyed by sample path.
type FileCache struct {
	Path string
}

// NewFileCache returns the cache kept in dir.
func NewFileCache(dir string) *FileCache {
	return &FileCache{Path: filepath.Join(dir, DurationsFileName)}
}

func (f *FileCache) Load(ctx context.Context) (map[string]int, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string]int
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", f.Path)
	}
	if out == nil {
		out = map[string]int{}
	}
	return out, nil
}

func (f *FileCache) Save(ctx context.Context, durations map[string]int) error {
	data, err := json.Marshal(durations)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0644)
}

// RedisCache keeps durations in one redis hash, shared by every machine that
// trains on the same corpus.
type RedisCache struct {
	Client *redis.Client
	Key    string
}

func (r *RedisCache) Load(ctx context.Context) (map[string]int, error) {
	raw, err := r.Client.HGetAll(ctx, r.Key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redis hgetall %s", r.Key)
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "duration of %s", k)
		}
		out[k] = n
	}
	return out, nil
}

func (r *RedisCache) Save(ctx context.Context, durations map[string]int) error {
	if len(durations) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(durations))
	for k, v := range durations {
		values[k] = v
	}
	return errors.Wrapf(r.Client.HSet(ctx, r.Key, values).Err(), "redis hset %s", r.Key)
}
