package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepform/pkg/adapters/bolt"
	"github.com/aretw0/stepform/pkg/adapters/file"
	"github.com/aretw0/stepform/pkg/adapters/memory"
	"github.com/aretw0/stepform/pkg/adapters/redis"
	"github.com/aretw0/stepform/pkg/adapters/sqlite"
	"github.com/aretw0/stepform/pkg/persistence/middleware"
	"github.com/aretw0/stepform/pkg/ports"
)

// backend is the session store selected by the configuration, with its
// optional locker and cleanup.
type backend struct {
	store  ports.SessionStore
	locker ports.DistributedLocker
	close  func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func openStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Store.Kind {
	case "", "memory":
		b.store = memory.NewStore()
	case "file":
		b.store = file.New(cfg.Store.Dir)
	case "redis":
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Store.TTL),
		)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		b.store = rs
		b.locker = redis.NewLocker(rs.Client(), rs.Prefix())
		b.close = rs.Close
	case "bolt":
		bs, err := bolt.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		b.store, b.close = bs, bs.Close
	case "sqlite":
		ss, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		b.store, b.close = ss, ss.Close
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store.Kind)
	}

	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = middleware.Chain(b.store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	logger.Debug("session store ready", "store", cfg.Store.Kind, "encrypted", cfg.EncryptionKey != "", "locker", b.locker != nil)
	return b, nil
}
