package main

import "context"
import "flag"
import "fmt"
import "log"
import "os"
import "os/signal"
import "path/filepath"

import "github.com/neurlang/stylish/config"
import "github.com/neurlang/stylish/parallel"
import "github.com/neurlang/stylish/progress"
import "github.com/neurlang/stylish/setup"
import "github.com/neurlang/stylish/simstage"
import "github.com/neurlang/stylish/trainer"

func main() {
	cfgPath := flag.String("config", "", "config .yml file")
	logDir := flag.String("log_dir", "", "log directory, overrides training.log_dir")
	epochs := flag.Int("epochs", 0, "number of epochs, overrides training.epochs")
	memory := flag.Int("memory_frames", 0, "simulated device memory in frames, overrides training.memory_frames")
	resume := flag.Bool("resume", false, "resume training from the log directory")
	debug := flag.Bool("debug", false, "log every train batch")
	flag.Bool("pgo", false, "enable pgo")
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
	if *epochs > 0 {
		cfg.Training.Epochs = *epochs
	}
	if *memory > 0 {
		cfg.Training.MemoryFrames = *memory
	}
	if *debug {
		cfg.Training.Debug = true
	}
	if err := cfg.Validate(false); err != nil {
		println(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stderr, fmt.Sprintf("[rank %d] ", cfg.Rank), log.LstdFlags)
	logger.Println("host", parallel.Host())

	run, err := setup.Open(ctx, cfg, logger)
	if err != nil {
		logger.Println(err)
		os.Exit(1)
	}
	defer run.Close()
	m := run.Manager

	epoch, step := 0, 0
	statusPath := filepath.Join(cfg.Training.LogDir, progress.FileName)
	if *resume {
		epoch, step, err = trainer.Resume(ctx, run.Table, statusPath)
		if err != nil {
			logger.Println(err)
			os.Exit(1)
		}
		if st, err := progress.Read(statusPath); err == nil {
			m.Restore(st)
		}
	} else if err := run.Table.Load(ctx); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
	if run.Table.Len() == 0 {
		logger.Println("no batch sizes in", cfg.Training.LogDir, "every bin trains at batch size 1, consider running probe_batch first")
	}

	stage := simstage.New(cfg.Training.MemoryFrames, cfg.Training.BaseLR)
	for ; epoch < cfg.Training.Epochs; epoch++ {
		if err := m.InitEpoch(epoch, step); err != nil {
			logger.Println(err)
			os.Exit(1)
		}
		step = 0
		if m.StepLimit == 0 {
			m.StepLimit = m.StepCount() * cfg.Training.Epochs
		}
		sum, err := m.RunEpoch(ctx, stage)
		if err != nil {
			logger.Println(err)
			os.Exit(1)
		}
		println("[epoch]", sum.Epoch, "loss", fmt.Sprintf("%.5f", sum.Loss), "trained", sum.Trained, "skipped", sum.Skipped,
			"lr", fmt.Sprintf("%.3g", stage.Schedule.GeneratorLR))
	}
}
