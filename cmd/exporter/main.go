package main

import (
	"context"
	stdlog "log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/punchamoorthee/txreplay/internal/config"
	"github.com/punchamoorthee/txreplay/internal/csvio"
	"github.com/punchamoorthee/txreplay/internal/logger"
	"github.com/punchamoorthee/txreplay/internal/service"
	"github.com/punchamoorthee/txreplay/internal/store"
	"go.uber.org/zap"
)

const exportTimeout = 5 * time.Minute

func main() {
	if len(os.Args) != 2 {
		stdlog.Fatal("usage: exporter <transactions.csv>")
	}

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}
	if err := cfg.RequireDB(); err != nil {
		stdlog.Fatal(err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		stdlog.Fatal(err)
	}
	defer log.Sync()

	// Decode everything before touching the database.
	records, err := csvio.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal("unable to read input", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	st, err := store.NewStore(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal("unable to prepare schema", zap.Error(err))
	}

	log.Info("replaying", zap.String("input", os.Args[1]), zap.Int("records", len(records)))
	snaps := service.Replay(records, log)

	runID := uuid.New()
	n, err := st.SaveRun(ctx, runID, snaps)
	if err != nil {
		log.Fatal("export failed", zap.Error(err))
	}

	log.Info("exported snapshots", zap.String("run_id", runID.String()), zap.Int64("rows", n))
}
