package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/punchamoorthee/txreplay/internal/csvio"
	"github.com/punchamoorthee/txreplay/internal/logger"
	"github.com/punchamoorthee/txreplay/internal/service"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: payments <transactions.csv>")

func main() {
	log, err := logger.New(logger.EnvProduction, "warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Error("replay failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, log *zap.Logger) error {
	if len(args) != 1 {
		return errUsage
	}

	records, err := csvio.ReadFile(args[0])
	if err != nil {
		return err
	}

	snaps := service.Replay(records, log)

	out := bufio.NewWriter(stdout)
	if err := csvio.WriteSnapshots(out, snaps); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
