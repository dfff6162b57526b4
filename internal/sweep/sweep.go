// Package sweep rolls every learner over to the new day on a schedule, so
// stale queues collapse even when nobody opens the app.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/queue"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// Store is the persistence the sweep needs.
type Store interface {
	store.DocumentStore
	store.Lister
}

// Config controls what the sweep assigns and when it runs.
type Config struct {
	Range       progress.LevelRange
	PerDay      int
	OffsetHours int
	// At is the HH:MM learner-zone time of the daily run.
	At          string
	Concurrency int
}

// Summary counts the outcome of one run.
type Summary struct {
	Users     int
	Collapsed int
	Written   int
	Failed    int
}

type Sweeper struct {
	store      Store
	collapser  *queue.Collapser
	reconciler *queue.Reconciler
	cfg        Config
	log        *logger.Logger

	mu   sync.Mutex
	cron *gocron.Scheduler
}

func New(st Store, pub *mirror.Publisher, log *logger.Logger, cfg Config) *Sweeper {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Sweeper{
		store:      st,
		collapser:  queue.NewCollapser(st, pub, log, cfg.OffsetHours),
		reconciler: queue.NewReconciler(st, pub, log, cfg.OffsetHours),
		cfg:        cfg,
		log:        log.With("service", "sweep"),
	}
}

// RunOnce sweeps every stored learner for today. A failing learner is
// counted and logged; only listing failures abort the run.
func (s *Sweeper) RunOnce(ctx context.Context, today string) (Summary, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list users: %w", err)
	}

	var collapsed, written, failed int32
	opts := queue.Options{Range: s.cfg.Range, PerDay: s.cfg.PerDay}

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			c, w, err := s.sweepUser(ctx, id, opts, today)
			switch {
			case err != nil:
				atomic.AddInt32(&failed, 1)
				s.log.Error("sweep failed", "user_id", id, "error", err)
			default:
				if c {
					atomic.AddInt32(&collapsed, 1)
				}
				if w {
					atomic.AddInt32(&written, 1)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{
		Users:     len(ids),
		Collapsed: int(collapsed),
		Written:   int(written),
		Failed:    int(failed),
	}
	s.log.Info("sweep finished", "day", today, "users", sum.Users, "collapsed", sum.Collapsed, "written", sum.Written, "failed", sum.Failed)
	return sum, ctx.Err()
}

func (s *Sweeper) sweepUser(ctx context.Context, userID string, opts queue.Options, today string) (bool, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, false, fmt.Errorf("load progress: %w", err)
	}
	collapsed, err := s.collapser.ReconcileIfStale(ctx, userID, doc, opts.Range, today, opts.PerDay)
	if err != nil {
		return false, false, err
	}
	res, err := s.reconciler.EnsureDailyQueue(ctx, userID, opts, today)
	if err != nil {
		return collapsed, false, err
	}
	return collapsed, res.Wrote, nil
}

// Start schedules RunOnce daily at the configured time in the learner zone.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("sweep already started")
	}

	cron := gocron.NewScheduler(daykey.Zone(s.cfg.OffsetHours))
	cron.SingletonModeAll()
	_, err := cron.Every(1).Day().At(s.cfg.At).Do(s.runScheduled)
	if err != nil {
		return fmt.Errorf("schedule sweep at %q: %w", s.cfg.At, err)
	}
	cron.StartAsync()
	s.cron = cron
	s.log.Info("sweep scheduled", "at", s.cfg.At, "zone", daykey.Zone(s.cfg.OffsetHours).String())
	return nil
}

// Stop stops the schedule. It is safe to call when not started.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// NextRun returns when the scheduled sweep fires next.
func (s *Sweeper) NextRun() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}, false
	}
	_, next := s.cron.NextRun()
	return next, true
}

func (s *Sweeper) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx, daykey.Today(s.cfg.OffsetHours)); err != nil {
		s.log.Error("scheduled sweep failed", "error", err)
	}
}
