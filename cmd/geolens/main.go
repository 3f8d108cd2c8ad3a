package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/config"
	"github.com/kailas-cloud/geolens/internal/db"
	dbRedis "github.com/kailas-cloud/geolens/internal/db/redis"
	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/image"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
	logpkg "github.com/kailas-cloud/geolens/internal/logger"
	"github.com/kailas-cloud/geolens/internal/metrics"
	"github.com/kailas-cloud/geolens/internal/repository/searchcache"
	chiTransport "github.com/kailas-cloud/geolens/internal/transport/chi"
	"github.com/kailas-cloud/geolens/internal/transport/searchapi"
	healthuc "github.com/kailas-cloud/geolens/internal/usecase/health"
	"github.com/kailas-cloud/geolens/internal/usecase/layers"
	searchuc "github.com/kailas-cloud/geolens/internal/usecase/search"
	"github.com/kailas-cloud/geolens/internal/usecase/session"
	"github.com/kailas-cloud/geolens/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting geolens API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_endpoint", cfg.Search.Endpoint),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	client, err := searchapi.New(&searchapi.Config{
		Endpoint:  cfg.Search.Endpoint,
		HealthURL: cfg.Search.HealthURL,
		Timeout:   time.Duration(cfg.Search.TimeoutSec) * time.Second,
		UserAgent: version.String(),
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create search client", zap.Error(err))
	}

	var searcher searchuc.Searcher = client
	// Pass nil interface (not typed nil pointer!) to health when the cache is off.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled() {
		store := openStore(cfg.Cache, logger)
		defer store.Close()

		searcher = searchcache.New(client, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.SearchCacheTotal, logger)
		cachePinger = store
	}

	registry := session.NewRegistry(
		session.Config{
			InitialView: surface.View{
				Center: geo.Point{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
				Zoom:   cfg.Map.Zoom,
			},
			FocusZoom:      cfg.Map.FocusZoom,
			BaseLayer:      tileLayer("map", cfg.Map.BaseLayer, layers.DefaultMapLayer),
			SatelliteLayer: tileLayer("satellite", cfg.Map.SatelliteLayer, layers.DefaultSatelliteLayer),
		},
		searcher,
		image.NewResolver(image.Config{
			ProxyBase:     cfg.Images.ProxyBase,
			StoragePrefix: cfg.Images.StoragePrefix,
			Bucket:        cfg.Images.Bucket,
			DatasetRoot:   cfg.Images.DatasetRoot,
		}),
		session.Limits{
			Max:     cfg.Sessions.Max,
			IdleTTL: time.Duration(cfg.Sessions.IdleTTLSec) * time.Second,
		},
		logger,
	)
	defer registry.CloseAll()

	healthSvc := healthuc.New(client, cachePinger)
	server := chiTransport.NewServer(registry, healthSvc)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		Logger:         logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore connects the response cache. redis and valkey speak the same protocol.
func openStore(cfg config.CacheConfig, logger *zap.Logger) db.Store {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.String("driver", cfg.Driver), zap.Error(err))
	}

	if err := store.WaitForReady(context.Background(), time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache not ready", zap.String("driver", cfg.Driver), zap.Error(err))
	}
	logger.Info("Connected to cache", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store
}

// tileLayer overrides the default tile source when a URL is configured.
func tileLayer(id string, lc config.LayerConfig, def surface.Layer) surface.Layer {
	if lc.URL == "" {
		return def
	}
	l := surface.Layer{ID: id, URLTemplate: lc.URL, Attribution: lc.Attribution, MaxZoom: lc.MaxZoom}
	if l.MaxZoom <= 0 {
		l.MaxZoom = def.MaxZoom
	}
	return l
}
