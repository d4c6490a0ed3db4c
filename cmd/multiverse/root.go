package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/multiverse/middlewares"
	"github.com/dmitrymomot/multiverse/pkg/api"
	"github.com/dmitrymomot/multiverse/pkg/cache"
	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/config"
	"github.com/dmitrymomot/multiverse/pkg/logger"
)

const responseCachePrefix = "multiverse:api:"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "multiverse",
		Short:        "Rick and Morty character catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	load := func() (config.Config, error) {
		return config.Load(configPath)
	}

	root.AddCommand(
		newServeCmd(load),
		newCharactersCmd(load),
	)
	return root
}

// deps are the services shared by every command.
type deps struct {
	log     *slog.Logger
	client  *api.Client
	svc     *characters.Service
	redis   redis.UniversalClient
	closers []io.Closer
}

func newDeps(ctx context.Context, cfg config.Config, out io.Writer) (*deps, error) {
	log := logger.New(cfg.Log,
		logger.WithWriter(out),
		logger.WithExtractors(middlewares.RequestIDExtractor(), middlewares.SessionExtractor()),
	)
	d := &deps{log: log}

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(log),
	}

	if cfg.Cache.TTL > 0 {
		store, err := d.responseCache(ctx, cfg.Cache)
		if err != nil {
			return nil, errors.Join(err, d.Close())
		}
		opts = append(opts, api.WithResponseCache(store, cfg.Cache.TTL))
	}

	client, err := api.New(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, errors.Join(err, d.Close())
	}
	d.client = client
	d.svc = characters.NewService(client)
	return d, nil
}

// responseCache selects Redis when configured, memory otherwise.
func (d *deps) responseCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache[api.CachedResponse], error) {
	if cfg.RedisURL == "" {
		mem := cache.NewMemory[api.CachedResponse](
			cache.WithDefaultTTL(cfg.TTL),
			cache.WithMaxEntries(cfg.MaxEntries),
		)
		d.closers = append(d.closers, mem)
		return mem, nil
	}

	client, err := cache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	d.redis = client
	d.closers = append(d.closers, client)
	d.log.InfoContext(ctx, "response cache uses redis")

	return cache.NewRedis[api.CachedResponse](client, cache.JSONCodec[api.CachedResponse]{},
		cache.WithPrefix(responseCachePrefix),
		cache.WithRedisDefaultTTL(cfg.TTL),
	), nil
}

// Close releases caches and connections in reverse order of creation.
func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	d.closers = nil
	return errors.Join(errs...)
}
