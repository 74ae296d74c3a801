package history

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tevino/abool/v2"
)

// Pruner periodically deletes records older than the retention period.
type Pruner struct {
	store     *Store
	retention time.Duration
	running   *abool.AtomicBool
	scheduler gocron.Scheduler
	now       func() time.Time
}

// NewPruner returns a Pruner for store.
func NewPruner(store *Store, retention time.Duration) *Pruner {
	return &Pruner{
		store:     store,
		retention: retention,
		running:   abool.New(),
		now:       time.Now,
	}
}

// Prune runs one pass. A pass that starts while another is still running
// returns immediately.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if !p.running.SetToIf(false, true) {
		return 0, nil
	}
	defer p.running.UnSet()
	return p.store.PruneBefore(ctx, p.now().Add(-p.retention))
}

// Start schedules Prune every interval.
func (p *Pruner) Start(every time.Duration) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(gocron.DurationJob(every), gocron.NewTask(func() {
		n, err := p.Prune(context.Background())
		if err != nil {
			log.Printf("history: %v", err)
			return
		}
		if n > 0 {
			log.Printf("history: pruned %d records", n)
		}
	}))
	if err != nil {
		s.Shutdown()
		return err
	}
	s.Start()
	p.scheduler = s
	return nil
}

// Stop stops the schedule started by Start.
func (p *Pruner) Stop() error {
	if p.scheduler == nil {
		return nil
	}
	return p.scheduler.Shutdown()
}
