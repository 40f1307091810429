package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/USSTM/wms-backend/internal/logging"
	"github.com/robfig/cron/v3"
)

// Loader refreshes an in-memory snapshot.
type Loader interface {
	Load(ctx context.Context) error
}

// ReloadRecorder observes reload outcomes.
type ReloadRecorder interface {
	RecordReload(err error)
}

// Reloader re-runs Load on a cron schedule. Runs never overlap; a tick that
// fires while the previous load is still running is skipped.
type Reloader struct {
	cron     *cron.Cron
	loader   Loader
	recorder ReloadRecorder
	timeout  time.Duration
}

func NewReloader(spec string, loader Loader, recorder ReloadRecorder) (*Reloader, error) {
	r := &Reloader{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		loader:   loader,
		recorder: recorder,
		timeout:  time.Minute,
	}
	if _, err := r.cron.AddFunc(spec, r.Reload); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	return r, nil
}

// Reload runs a single load immediately.
func (r *Reloader) Reload() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	err := r.loader.Load(ctx)
	if r.recorder != nil {
		r.recorder.RecordReload(err)
	}
	if err != nil {
		logging.Warn("Reference data reload finished with errors", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logging.Debug("Reference data reloaded", "duration_ms", time.Since(start).Milliseconds())
}

func (r *Reloader) Start() {
	r.cron.Start()
	logging.Info("Reference data reload scheduled", "entries", len(r.cron.Entries()))
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *Reloader) Stop() {
	<-r.cron.Stop().Done()
}
