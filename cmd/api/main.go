package main

import (
	"context"
	stdlog "log"
	"net/http"

	"github.com/punchamoorthee/txreplay/internal/api"
	"github.com/punchamoorthee/txreplay/internal/config"
	"github.com/punchamoorthee/txreplay/internal/logger"
	"github.com/punchamoorthee/txreplay/internal/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		stdlog.Fatal(err)
	}
	defer log.Sync()

	// The archive is optional; without DB_SOURCE replays are served but not kept.
	var archive api.Archive
	if cfg.DBSource != "" {
		ctx := context.Background()
		st, err := store.NewStore(ctx, cfg.DBSource)
		if err != nil {
			log.Fatal("unable to connect to database", zap.Error(err))
		}
		defer st.Close()

		if err := st.EnsureSchema(ctx); err != nil {
			log.Fatal("unable to prepare schema", zap.Error(err))
		}
		archive = st
	}

	handler := api.NewHandler(archive, log, cfg.MaxUploadBytes)
	r := api.NewRouter(handler)

	log.Info("server starting", zap.String("port", cfg.Port), zap.Bool("archive", archive != nil))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
