// Package session ties the progression engine together for one learner:
// it loads progress, rolls stale queues over, assigns the day's lessons,
// records lesson outcomes and reports what the learner should do next.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/queue"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// Config holds the per-learner study settings.
type Config struct {
	Range       progress.LevelRange
	PerDay      int
	OffsetHours int
}

type Service struct {
	store      store.DocumentStore
	cache      mirror.Loader
	mirror     *mirror.Publisher
	reconciler *queue.Reconciler
	collapser  *queue.Collapser
	log        *logger.Logger
	cfg        Config
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache lets Preview answer from a mirrored snapshot.
func WithCache(l mirror.Loader) Option {
	return func(s *Service) { s.cache = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.DocumentStore, pub *mirror.Publisher, log *logger.Logger, cfg Config, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store:      st,
		mirror:     pub,
		reconciler: queue.NewReconciler(st, pub, log, cfg.OffsetHours),
		collapser:  queue.NewCollapser(st, pub, log, cfg.OffsetHours),
		log:        log.With("service", "session"),
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current day key in the learner zone.
func (s *Service) Today() string {
	return daykey.Key(s.now(), s.cfg.OffsetHours)
}

// Load returns the stored document, empty when none exists.
func (s *Service) Load(ctx context.Context, userID string) (progress.Document, error) {
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		return progress.Document{}, fmt.Errorf("load progress: %w", err)
	}
	return doc, nil
}

// Next runs the full page-load flow: collapse a stale queue, make sure
// today's queue exists, then resolve the stage from the stored state.
func (s *Service) Next(ctx context.Context, userID string) (Plan, error) {
	today := s.Today()

	doc, err := s.Load(ctx, userID)
	if err != nil {
		return Plan{}, err
	}

	collapsed, err := s.collapser.ReconcileIfStale(ctx, userID, doc, s.cfg.Range, today, s.cfg.PerDay)
	if err != nil {
		return Plan{}, err
	}

	res, err := s.reconciler.EnsureDailyQueue(ctx, userID, queue.Options{Range: s.cfg.Range, PerDay: s.cfg.PerDay}, today)
	if err != nil {
		return Plan{}, err
	}

	if collapsed || res.Wrote {
		if doc, err = s.Load(ctx, userID); err != nil {
			return Plan{}, err
		}
	}

	p := s.plan(userID, doc, today)
	p.Collapsed = collapsed
	p.QueueWritten = res.Wrote
	p.Exhausted = res.Exhausted
	s.log.Debug("next resolved", "user_id", userID, "day", today, "stage", p.Stage.Stage, "reason", p.Stage.Reason)
	return p, nil
}

// Preview resolves the stage without writing anything. It prefers the
// mirrored snapshot when one is available.
func (s *Service) Preview(ctx context.Context, userID string) (Plan, error) {
	today := s.Today()

	if s.cache != nil {
		doc, ok, err := s.cache.Load(ctx, userID)
		if err != nil {
			s.log.Warn("mirror read failed", "user_id", userID, "error", err)
		} else if ok {
			p := s.plan(userID, doc, today)
			p.FromCache = true
			return p, nil
		}
	}

	doc, err := s.Load(ctx, userID)
	if err != nil {
		return Plan{}, err
	}
	return s.plan(userID, doc, today), nil
}
