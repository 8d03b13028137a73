package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/autocache"
	"github.com/unkn0wn-root/autocache/autoload"
	"github.com/unkn0wn-root/autocache/codec"
	"github.com/unkn0wn-root/autocache/internal/config"
	zaplog "github.com/unkn0wn-root/autocache/log/zap"
	"github.com/unkn0wn-root/autocache/router"
	"github.com/unkn0wn-root/autocache/router/rendezvous"
	"github.com/unkn0wn-root/autocache/router/ring"
)

// session is everything one command needs; close releases it.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	router   router.Router
	registry *autoload.Redis
	m        autocache.Manager[string]
}

func loadConfig(g *globals) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if g.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(g.configPath); err != nil {
			return nil, err
		}
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	if g.namespace != "" {
		cfg.Namespace = g.namespace
	}
	if g.router != "" {
		cfg.Router = g.router
	}
	if g.shards != "" {
		shards, err := config.ParseShards(g.shards)
		if err != nil {
			return nil, err
		}
		cfg.Shards = shards
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func newRouter(cfg *config.Config) (router.Router, error) {
	if cfg.Router == config.RouterRing {
		return ring.New(ring.Config{
			Ring: redis.NewRing(&redis.RingOptions{
				Addrs:        cfg.Shards,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
			}),
			CloseRing: true,
		})
	}
	return rendezvous.New(rendezvous.Config{
		Shards: rendezvous.Clients(cfg.Shards, redis.Options{
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}),
		CloseClients: true,
	})
}

func openSession(g *globals) (*session, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	zl, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	logger := zaplog.ZapLogger{L: zl}

	rt, err := newRouter(cfg)
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}
	s := &session{cfg: cfg, log: zl, router: rt}

	opts := autocache.Options[string]{
		Namespace:  cfg.Namespace,
		Router:     rt,
		Codec:      codec.String{},
		Logger:     logger,
		DefaultTTL: cfg.DefaultTTL,
	}
	if cfg.Registry.Addr != "" {
		s.registry = autoload.NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.Registry.Addr,
			Password: cfg.Registry.Password,
			DB:       cfg.Registry.DB,
		}), autoload.RedisOptions{Namespace: cfg.Namespace, Logger: logger, CloseClient: true})
		opts.Registry = s.registry
	}

	if s.m, err = autocache.New[string](opts); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	ctx := context.Background()
	if s.m != nil {
		if err := s.m.Close(ctx); err != nil {
			s.log.Warn("close router", zap.Error(err))
		}
	} else if s.router != nil {
		_ = s.router.Close()
	}
	if s.registry != nil {
		_ = s.registry.Close(ctx)
	}
	_ = s.log.Sync()
}
