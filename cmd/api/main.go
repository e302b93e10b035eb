package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pet-tag-registry/internal/adapters/auth/portal"
	"pet-tag-registry/internal/adapters/georef"
	"pet-tag-registry/internal/adapters/storage/postgres"
	redisstore "pet-tag-registry/internal/adapters/storage/redis"
	"pet-tag-registry/internal/config"
	"pet-tag-registry/internal/platform/logger"
	"pet-tag-registry/internal/router"
)

// @title Pet Tag Registry API
// @version 1.0
// @description Registro de chapitas QR: activación de chapitas, mascotas perdidas y ubicaciones.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Todavía no hay logger configurado, salida directa.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		App:    "pet-tag-registry",
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
	})

	opts := router.Options{
		Logger:       log,
		QRBaseURL:    cfg.Tags.QRBaseURL,
		MaxBatchSize: cfg.Tags.MaxBatchSize,
	}

	if cfg.Database.DSN != "" {
		db, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			log.Error("postgres no disponible", logger.Err(err))
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: in-memory (sin DB_DSN)", nil)
	}

	if cfg.Redis.URL != "" {
		rdb, err := redisstore.Open(cfg.Redis.URL)
		if err != nil {
			log.Error("redis no disponible", logger.Err(err))
			os.Exit(1)
		}
		defer rdb.Close()
		opts.Redis = rdb
		log.Info("draft cache: redis", nil)
	}

	if cfg.Auth.PortalBaseURL != "" {
		client, err := portal.NewClient(portal.Config{
			BaseURL: cfg.Auth.PortalBaseURL,
			APIKey:  cfg.Auth.PortalAPIKey,
			Timeout: cfg.Auth.Timeout,
		})
		if err != nil {
			log.Error("portal auth mal configurado", logger.Err(err))
			os.Exit(1)
		}
		opts.AuthVerifier = portal.NewVerifier(client)
		log.Info("auth: portal", map[string]any{"base_url": cfg.Auth.PortalBaseURL})
	} else {
		log.Warn("auth: modo dev (X-Debug-User-ID)", nil)
	}

	geoClient, err := georef.NewClient(georef.Config{
		BaseURL: cfg.Georef.BaseURL,
		Timeout: cfg.Georef.Timeout,
	})
	if err != nil {
		log.Error("georef mal configurado", logger.Err(err))
		os.Exit(1)
	}
	opts.GeoSource = geoClient

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Server.Addr})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Err(err))
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", logger.Err(err))
			os.Exit(1)
		}
	}
}
