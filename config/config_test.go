package config

import "os"
import "path/filepath"
import "testing"

func write(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("WORLD_SIZE", "")
	t.Setenv("RANK", "")
	t.Setenv("STYLISH_REDIS_ADDR", "")
	path := write(t, `
dataset:
  train_data: train.txt
  wav_path: /data/wavs
training:
  log_dir: run1
  epochs: 3
  probe_batch_max: 16
  seed: 7
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Dataset.TrainData != filepath.Join(filepath.Dir(path), "train.txt") {
		t.Errorf("TrainData = %q", c.Dataset.TrainData)
	}
	if c.Dataset.WavPath != "/data/wavs" {
		t.Errorf("WavPath = %q", c.Dataset.WavPath)
	}
	if c.Training.Epochs != 3 || c.Training.ProbeBatchMax != 16 || c.Training.Seed != 7 {
		t.Errorf("Training = %+v", c.Training)
	}
	if c.Training.BaseLR != 1e-4 || c.Training.Device != "host" {
		t.Errorf("defaults lost: %+v", c.Training)
	}
	if c.WorldSize != 1 || c.Rank != 0 {
		t.Errorf("WorldSize %d Rank %d", c.WorldSize, c.Rank)
	}
	if err := c.Validate(true); err != nil {
		t.Error(err)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("WORLD_SIZE", "4")
	t.Setenv("RANK", "2")
	t.Setenv("STYLISH_REDIS_ADDR", "localhost:6379")
	c := Default()
	c.Dataset.TrainData = "train.txt"
	if err := c.Env(); err != nil {
		t.Fatal(err)
	}
	if c.WorldSize != 4 || c.Rank != 2 || c.RedisAddr != "localhost:6379" {
		t.Errorf("%+v", c)
	}
	if err := c.Validate(false); err != nil {
		t.Error(err)
	}
	if err := c.Validate(true); err == nil {
		t.Error("probing accepted four processes")
	}

	t.Setenv("RANK", "two")
	if err := c.Env(); err == nil {
		t.Error("accepted a non numeric rank")
	}
}

func TestValidate(t *testing.T) {
	for name, edit := range map[string]func(*Config){
		"no train data": func(c *Config) { c.Dataset.TrainData = "" },
		"no log dir":    func(c *Config) { c.Training.LogDir = "" },
		"rank":          func(c *Config) { c.Rank = 1 },
		"device":        func(c *Config) { c.Training.Device = "tpu" },
	} {
		c := Default()
		c.Dataset.TrainData = "train.txt"
		edit(c)
		if err := c.Validate(false); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yml")); err == nil {
		t.Error("loaded a missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(write(t, "dataset: [")); err == nil {
		t.Error("parsed broken yaml")
	}
}
