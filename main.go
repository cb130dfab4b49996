package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"stockwatch/chartview"
	"stockwatch/config"
	"stockwatch/feed"
	fiberhelpers "stockwatch/utils/fiberhelper"
	"stockwatch/utils/log"
	"stockwatch/utils/resty"
	"stockwatch/webserver"
)

func main() {
	// 1) configuration and logging
	path := os.Getenv("STOCKWATCH_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := log.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal(err)
	}

	// 2) data supplier, optionally behind the redis cache
	client := feed.NewClient(
		resty.NewDefaultRestyClient(resty.Options{
			Trace:      cfg.Supplier.Trace,
			RetryCount: cfg.Supplier.Retries,
			Timeout:    cfg.Supplier.Timeout,
		}),
		cfg.Supplier.BaseURL,
		feed.WithBackfill(cfg.Supplier.Backfill),
	)
	var supplier feed.Supplier = client
	hub := feed.NewHub()
	hub.Start()

	var warmer *feed.Warmer
	var cache *feed.RedisCache
	if cfg.Redis.Enabled {
		cache = feed.NewRedisCache(feed.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx); err != nil {
			log.Warnf("redis %s unreachable, reads will fall through: %v", cfg.Redis.Addr, err)
		}
		cancel()

		cached := feed.NewCachedSupplier(client, cache)
		supplier = cached

		// 3) cache warmer
		if len(cfg.Warm.Codes) > 0 {
			warmer = feed.NewWarmer(cached, hub, cfg.Warm.Codes, cfg.Warm.Timeout)
			if err := warmer.Schedule(cfg.Warm.Cron); err != nil {
				log.Fatal(err)
			}
			warmer.Start()
		}
	}

	// 4) sessions and the HTTP host
	var server *webserver.WebServer
	registry := chartview.NewRegistry(
		chartview.WithSurfaceSize(cfg.Chart.Width, cfg.Chart.Height),
		chartview.WithOnRemove(func(id string) { server.Forget(id) }),
	)
	server = webserver.NewWebServer(registry, supplier,
		webserver.WithHub(hub),
		webserver.WithFetchTimeout(cfg.Supplier.Timeout),
	)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(fmt.Sprintf("@every %s", cfg.Session.SweepInterval), func() {
		if n := registry.Sweep(cfg.Session.Idle); n > 0 {
			log.Infof("swept %d idle sessions, %d left", n, registry.Len())
		}
	}); err != nil {
		log.Fatal(err)
	}
	sweeper.Start()

	// 5) serve until SIGINT/SIGTERM
	fiberhelpers.ListenWithGraceFullyShutdown(server.App(), cfg.Server.Port, func() {
		<-sweeper.Stop().Done()
		if warmer != nil {
			warmer.Stop()
		}
		server.Close()
		hub.Stop()
		if cache != nil {
			if err := cache.Close(); err != nil {
				log.Warnf("close redis: %v", err)
			}
		}
		log.Info("Shutdown complete.")
	})
}
