// Package setup wires a configured run: the train list, the duration cache,
// the batch size table, the execution device and the trainer.
package setup

import "context"
import "log"
import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "github.com/redis/go-redis/v9"

import "github.com/neurlang/stylish/batchsize"
import "github.com/neurlang/stylish/config"
import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/progress"
import "github.com/neurlang/stylish/trainer"

// Run is everything a command needs to probe or train.
type Run struct {
	Config   *config.Config
	Dataset  *dataset.Dataset
	Table    *batchsize.Table
	Manager  *trainer.Manager
	Progress *progress.Writer
	Redis    *redis.Client

	closers []func()
}

// Open builds a run from c. The caller must Close it.
func Open(ctx context.Context, c *config.Config, logger *log.Logger) (*Run, error) {
	r := &Run{Config: c}
	if err := r.open(ctx, logger); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Run) open(ctx context.Context, logger *log.Logger) error {
	c := r.Config
	logDir := c.Training.LogDir
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return errors.Wrap(err, "creating log dir")
	}

	var store batchsize.Store = batchsize.NewFileStore(logDir)
	var cache dataset.DurationCache = dataset.NewFileCache(logDir)
	if c.RedisAddr != "" {
		r.Redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		r.closers = append(r.closers, func() { r.Redis.Close() })
		if err := r.Redis.Ping(ctx).Err(); err != nil {
			return errors.Wrapf(err, "connecting to redis at %s", c.RedisAddr)
		}
		store = batchsize.NewRedisStore(r.Redis, logDir)
		cache = &dataset.RedisCache{
			Client: r.Redis,
			Key:    "stylish:" + filepath.Clean(c.Dataset.TrainData) + ":" + dataset.DurationsFileName,
		}
	}

	samples, err := dataset.ReadListFile(c.Dataset.TrainData)
	if err != nil {
		return err
	}
	d, err := dataset.New(samples, c.Dataset.WavPath)
	if err != nil {
		return errors.Wrapf(err, "%s", c.Dataset.TrainData)
	}
	d.Cache = cache
	d.Logger = logger
	if c.Training.Workers > 0 {
		d.Workers = c.Training.Workers
	}
	r.Dataset = d
	r.Table = batchsize.New(store)

	m, err := trainer.Open(ctx, d, r.Table)
	if err != nil {
		return err
	}
	m.Logger = logger
	m.Replicas = trainer.Replicas{Count: c.WorldSize, Rank: c.Rank}
	m.Seed = c.Training.Seed
	m.Debug = c.Training.Debug
	if c.Training.Workers > 0 {
		m.Loader = loaderFor(d, c.Training.Workers)
	}
	dev, closeDev, err := openDevice(c.Training, logger)
	if err != nil {
		return err
	}
	r.closers = append(r.closers, closeDev)
	m.Device = dev
	r.Manager = m

	r.Progress = progress.NewWriter(logDir, c.Training.Stage)
	m.Progress = r.Progress
	return nil
}

// Close releases the device and the redis connection.
func (r *Run) Close() {
	if r == nil {
		return
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}
