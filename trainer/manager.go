package trainer

import "context"
import "io"
import "log"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/batchsize"
import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/device"
import "github.com/neurlang/stylish/loader"
import "github.com/neurlang/stylish/progress"
import "github.com/neurlang/stylish/sampler"
import "github.com/neurlang/stylish/timebin"

// MaxAttempts bounds the tries of one training step.
const MaxAttempts = 3

// ErrProbeMultiReplica is returned when probing is attempted with more than one process.
var ErrProbeMultiReplica = errors.New("batch probing must be run with a single process; " +
	"after running it, distribute the " + batchsize.FileName + " files to the log directories and run data parallel")

// Manager schedules batches for one stage of one training process.
type Manager struct {
	Bins     map[int][]int
	Collator loader.Collator
	Table    *batchsize.Table
	Replicas Replicas
	Device   Device
	Loader   *loader.Loader
	Logger   *log.Logger
	Progress *progress.Writer
	// ProbeOutput receives the probe progress bar; nil discards it.
	ProbeOutput io.Writer
	Seed        int64
	// StepLimit is the step count the learning rate schedule spans; zero
	// means one epoch.
	StepLimit int
	Debug     bool

	Epoch     int
	Step      int
	TotalStep int
	Backoffs  int
	Skipped   int

	schedule sampler.Schedule
	skip     int

	lastBin     int
	lastOOM     int
	skipForward bool
}

// New returns a manager over bins with a single replica on the host.
func New(bins map[int][]int, c loader.Collator, table *batchsize.Table) *Manager {
	return &Manager{
		Bins:     bins,
		Collator: c,
		Table:    table,
		Device:   device.Host{},
		Logger:   log.New(os.Stderr, "", log.LstdFlags),
		lastBin:  timebin.None,
		lastOOM:  timebin.None,
	}
}

// Open measures the dataset and returns a manager over its time bins.
func Open(ctx context.Context, d *dataset.Dataset, table *batchsize.Table) (*Manager, error) {
	bins, err := d.TimeBins(ctx)
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, errors.New("no sample is long enough to fall in a time bin")
	}
	m := New(bins, d, table)
	if d.Logger != nil {
		m.Logger = d.Logger
	}
	return m, nil
}

// SetLogger sends log lines to w.
func (m *Manager) SetLogger(w io.Writer) {
	m.Logger = log.New(w, "", log.LstdFlags)
}

func (m *Manager) logf(format string, args ...interface{}) {
	if m.Logger != nil {
		m.Logger.Printf(format, args...)
	}
}

func (m *Manager) sampler(opts sampler.Options) *sampler.Sampler {
	r := m.Replicas.normalize()
	opts.Seed = m.Seed
	opts.Replicas = r.Count
	opts.Rank = r.Rank
	return sampler.New(m.Bins, m.Table, opts)
}

// StepCount is the number of batches of the current epoch on this replica.
func (m *Manager) StepCount() int {
	return len(m.schedule)
}

func (m *Manager) stepLimit() int {
	if m.StepLimit > 0 {
		return m.StepLimit
	}
	if n := m.StepCount(); n > 0 {
		return n
	}
	return 1
}
