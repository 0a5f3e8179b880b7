package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
)

const (
	// BatchSize is how many queue entries a job pops at once
	BatchSize = 100
	// MaxBatches bounds the work done by a single run
	MaxBatches = 50

	AuthLookupJob = "auth_lookup"
	ReindexJob    = "reindex"
)

// Func processes up to limit queue entries and returns how many it handled
type Func func(ctx context.Context, limit int) (int, error)

// AuthLookupQueue is satisfied by *authz.Authorizer
type AuthLookupQueue interface {
	ProcessQueue(limit int) (int, error)
}

// ReindexQueue is satisfied by *search.Indexer
type ReindexQueue interface {
	ProcessQueue(ctx context.Context, limit int) (int, error)
}

// AuthLookup adapts the auth lookup queue to a job
func AuthLookup(q AuthLookupQueue) Func {
	return func(_ context.Context, limit int) (int, error) {
		return q.ProcessQueue(limit)
	}
}

// Reindex adapts the reindexing queue to a job
func Reindex(q ReindexQueue) Func {
	return q.ProcessQueue
}

// Manager owns the cron scheduler
type Manager struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewManager creates a stopped scheduler
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add schedules a job. A blank spec disables the job.
func (m *Manager) Add(name, spec string, f Func) error {
	if spec == "" {
		logging.Log.WithField("job", name).Info("Job disabled")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[name]; ok {
		return fmt.Errorf("job %q is already scheduled", name)
	}
	id, err := m.cron.AddFunc(spec, func() { m.run(name, f) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	m.entries[name] = id
	return nil
}

// RunNow runs a job once in the calling goroutine
func (m *Manager) RunNow(name string, f Func) (int, error) {
	return drain(m.ctx, name, f)
}

func (m *Manager) run(name string, f Func) {
	_, _ = drain(m.ctx, name, f)
}

// drain pops batches until the queue is empty or MaxBatches is reached
func drain(ctx context.Context, name string, f Func) (int, error) {
	start := time.Now()
	total := 0
	var err error
	for i := 0; i < MaxBatches; i++ {
		var n int
		n, err = f(ctx, BatchSize)
		total += n
		if err != nil || n < BatchSize || ctx.Err() != nil {
			break
		}
	}
	metrics.RecordJobRun(name, time.Since(start), total, err == nil)

	entry := logging.Log.WithFields(logging.Fields{"job": name, "processed": total})
	if err != nil {
		entry.WithError(err).Error("Job failed")
		return total, err
	}
	if total > 0 {
		entry.Debug("Job finished")
	}
	return total, nil
}

// Start runs the scheduler in its own goroutine
func (m *Manager) Start() {
	m.cron.Start()
}

// Stop stops scheduling and cancels running jobs. The returned context is
// done once running jobs have returned.
func (m *Manager) Stop() context.Context {
	m.cancel()
	return m.cron.Stop()
}

// Entries lists the scheduled job names with their next run
func (m *Manager) Entries() map[string]time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]time.Time, len(m.entries))
	for name, id := range m.entries {
		out[name] = m.cron.Entry(id).Next
	}
	return out
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Log.WithFields(kv(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Log.WithFields(kv(keysAndValues)).WithError(err).Error(msg)
}

func kv(keysAndValues []interface{}) logging.Fields {
	fields := logging.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
