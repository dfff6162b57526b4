package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/config"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/session"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// deps is everything a command needs, built once per invocation.
type deps struct {
	cfg     config.Config
	log     *logger.Logger
	store   *store.Store
	mirror  *mirror.Publisher
	redis   *mirror.Redis
	session *session.Service
}

// openDeps resolves configuration, opens the store and builds the
// services. The caller must Close the result.
func openDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.WithSalt(cfg.LogHashSalt)

	st, err := store.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	d := &deps{cfg: cfg, log: log, store: st}

	mem := mirror.NewMemory()
	d.mirror = mirror.NewPublisher(log, mem)
	var cache mirror.Loader = mem
	if cfg.RedisAddr != "" {
		r, err := mirror.NewRedis(cmd.Context(), cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			log.Warn("redis mirror unavailable", "addr", cfg.RedisAddr, "error", err)
		} else {
			d.redis = r
			d.mirror.Subscribe(r)
			cache = r
		}
	}

	d.session = session.NewService(st, d.mirror, log, session.Config{
		Range:       cfg.Range,
		PerDay:      cfg.PerDay,
		OffsetHours: cfg.OffsetHours,
	}, session.WithCache(cache))
	return d, nil
}

func (d *deps) Close() {
	if d.redis != nil {
		d.redis.Close()
	}
	d.store.Close()
	d.log.Sync()
}
