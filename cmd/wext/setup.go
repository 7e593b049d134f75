package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/garrettladley/wext/internal/config"
	"github.com/garrettladley/wext/internal/db"
	"github.com/garrettladley/wext/internal/history"
	"github.com/garrettladley/wext/internal/paths"
	"github.com/garrettladley/wext/internal/session"
	"github.com/garrettladley/wext/internal/xslog"
)

// cli holds what every subcommand needs: config, a logger writing to the log
// file, the persistent session id and the poll history.
type cli struct {
	cfg       config.Config
	logger    *slog.Logger
	sessionID string
	history   *history.Store

	closers []func() error
}

func setup(ctx context.Context, logTo io.Writer) (*cli, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dir, err := paths.EnsureDir()
	if err != nil {
		return nil, err
	}

	c := &cli{cfg: cfg}

	if logTo == nil {
		logPath, err := paths.Log()
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		c.closers = append(c.closers, f.Close)
		logTo = f
	}
	c.logger = xslog.NewLoggerFromEnv(logTo)
	slog.SetDefault(c.logger)

	c.sessionID, err = session.Load(dir)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	dbPath, err := paths.DB()
	if err != nil {
		c.close()
		return nil, err
	}
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.closers = append(c.closers, sqlDB.Close)
	c.history = history.New(sqlDB)

	ctx = xslog.WithLogger(ctx, c.logger)
	n, err := history.Prune(ctx, c.history, cfg.HistoryRetention, time.Now())
	if err != nil {
		c.logger.WarnContext(ctx, "poll history retention failed", xslog.Error(err))
	} else if n > 0 {
		c.logger.InfoContext(ctx, "pruned poll history", xslog.Count(int(n)))
	}

	return c, nil
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}
