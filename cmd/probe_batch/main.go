package main

import "context"
import "flag"
import "fmt"
import "log"
import "os"
import "os/signal"

import "github.com/neurlang/stylish/config"
import "github.com/neurlang/stylish/parallel"
import "github.com/neurlang/stylish/setup"
import "github.com/neurlang/stylish/simstage"
import "github.com/neurlang/stylish/timebin"

func main() {
	cfgPath := flag.String("config", "", "config .yml file")
	logDir := flag.String("log_dir", "", "log directory, overrides training.log_dir")
	batchMax := flag.Int("probe_batch", -1, "largest batch size to try, overrides training.probe_batch_max")
	memory := flag.Int("memory_frames", 0, "simulated device memory in frames, overrides training.memory_frames")
	flag.Parse()

	if cfgPath == nil || *cfgPath == "" {
		println("config is mandatory")
		return
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}
	if *logDir != "" {
		cfg.Training.LogDir = *logDir
	}
	if *batchMax >= 0 {
		cfg.Training.ProbeBatchMax = *batchMax
	}
	if *memory > 0 {
		cfg.Training.MemoryFrames = *memory
	}
	if err := cfg.Validate(true); err != nil {
		println(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Println("host", parallel.Host())

	run, err := setup.Open(ctx, cfg, logger)
	if err != nil {
		logger.Println(err)
		os.Exit(1)
	}
	defer run.Close()
	m := run.Manager
	m.ProbeOutput = os.Stderr

	stage := simstage.New(cfg.Training.MemoryFrames, cfg.Training.BaseLR)
	if err := m.Probe(ctx, stage, cfg.Training.ProbeBatchMax); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
	for _, bin := range run.Table.Bins() {
		fmt.Println("[bin]", bin, timebin.Seconds(bin), "s", "batch_size", run.Table.Get(bin))
	}
}
