// Package config loads the run configuration from a YAML file and the
// process environment.
package config

import "os"
import "path/filepath"
import "strconv"

import "github.com/joho/godotenv"
import "github.com/pkg/errors"
import "gopkg.in/yaml.v3"

type Dataset struct {
	// TrainData is the path|text|speaker list of training samples.
	TrainData string `yaml:"train_data"`
	ValData   string `yaml:"val_data"`
	// WavPath is the directory sample paths are relative to.
	WavPath string `yaml:"wav_path"`
}

type Training struct {
	LogDir        string  `yaml:"log_dir"`
	Stage         string  `yaml:"stage"`
	Epochs        int     `yaml:"epochs"`
	Seed          int64   `yaml:"seed"`
	BaseLR        float64 `yaml:"base_lr"`
	ProbeBatchMax int     `yaml:"probe_batch_max"`
	// MemoryFrames is the frame budget of the simulated stage.
	MemoryFrames int    `yaml:"memory_frames"`
	Device       string `yaml:"device"`
	DeviceIndex  int    `yaml:"device_index"`
	Workers      int    `yaml:"workers"`
	Debug        bool   `yaml:"debug"`
}

// Config is a whole run.
type Config struct {
	Dataset  Dataset  `yaml:"dataset"`
	Training Training `yaml:"training"`

	// WorldSize and Rank come from the environment of a data parallel launch.
	WorldSize int `yaml:"-"`
	Rank      int `yaml:"-"`
	// RedisAddr selects Redis for the batch size table and duration cache.
	RedisAddr string `yaml:"-"`
}

// Default is the configuration before the file is applied.
func Default() *Config {
	return &Config{
		Training: Training{
			LogDir:        "logs",
			Stage:         "first",
			Epochs:        10,
			BaseLR:        1e-4,
			ProbeBatchMax: 64,
			MemoryFrames:  4096,
			Device:        "host",
		},
		WorldSize: 1,
	}
}

// Load reads the YAML file at path over the defaults, then the environment.
// A .env file in the working directory is read first when present.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		c.resolve(filepath.Dir(path))
	}
	if err := c.Env(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolve makes dataset paths relative to the config file's directory.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Dataset.TrainData, &c.Dataset.ValData, &c.Dataset.WavPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Env applies WORLD_SIZE, RANK and STYLISH_REDIS_ADDR.
func (c *Config) Env() error {
	_ = godotenv.Load()
	var err error
	if c.WorldSize, err = envInt("WORLD_SIZE", c.WorldSize); err != nil {
		return err
	}
	if c.Rank, err = envInt("RANK", c.Rank); err != nil {
		return err
	}
	if v := os.Getenv("STYLISH_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	return nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "environment %s", key)
	}
	return n, nil
}

// Validate checks the configuration before any step runs. probing says
// whether the run is a batch size probe.
func (c *Config) Validate(probing bool) error {
	if c.Dataset.TrainData == "" {
		return errors.New("dataset.train_data is mandatory")
	}
	if c.Training.LogDir == "" {
		return errors.New("training.log_dir is mandatory")
	}
	if c.WorldSize < 1 {
		return errors.Errorf("world size %d must be positive", c.WorldSize)
	}
	if c.Rank < 0 || c.Rank >= c.WorldSize {
		return errors.Errorf("rank %d outside world size %d", c.Rank, c.WorldSize)
	}
	if probing && c.WorldSize > 1 {
		return errors.New("batch probing must be run with a single process")
	}
	if probing && c.Training.ProbeBatchMax < 0 {
		return errors.Errorf("training.probe_batch_max %d is negative", c.Training.ProbeBatchMax)
	}
	switch c.Training.Device {
	case "host", "cuda":
	default:
		return errors.Errorf("training.device %q is neither host nor cuda", c.Training.Device)
	}
	return nil
}
