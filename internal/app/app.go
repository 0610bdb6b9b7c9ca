package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ben-ranford/d7audit/internal/analysis"
	"github.com/ben-ranford/d7audit/internal/report"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

var ErrUnknownMode = errors.New("unknown mode")

type App struct {
	Analyzer  analysis.Analyzer
	Formatter report.Formatter
	Logger    *slog.Logger
	Level     *slog.LevelVar
	Now       func() time.Time
	// DownloadDir receives --download reports. Empty means the working
	// directory.
	DownloadDir string
}

// New wires the audit service with a text logger on errOut.
func New(errOut io.Writer) *App {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	return &App{
		Analyzer:  analysis.NewService(logger),
		Formatter: report.NewFormatter(),
		Logger:    logger,
		Level:     level,
		Now:       time.Now,
	}
}

func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	switch req.Mode {
	case ModeAudit:
		return a.executeAudit(ctx, req.Audit)
	case ModeVersion:
		return "d7audit " + Version + "\n", nil
	case ModeSchema:
		return string(report.JSONSchema()), nil
	default:
		return "", ErrUnknownMode
	}
}

func (a *App) executeAudit(ctx context.Context, req AuditRequest) (string, error) {
	if req.Verbose && a.Level != nil {
		a.Level.Set(slog.LevelDebug)
	}
	logger := a.logger()
	if req.ConfigPath != "" {
		logger.Debug("loaded config file", "path", req.ConfigPath)
	}

	values := req.Config
	results, err := a.Analyzer.Analyse(ctx, analysis.Request{
		Docroot:      values.Docroot,
		Database:     values.Database.ConnectionConfig(),
		SkipDatabase: values.SkipDatabase,
		Workers:      values.Workers,
		QueryStats:   values.QueryStats,
	})
	if err != nil {
		return "", err
	}

	formatted, err := a.Formatter.Format(results, req.Format)
	if err != nil {
		return "", err
	}

	target := req.OutputPath
	if req.Download {
		target = filepath.Join(a.DownloadDir, report.DownloadFileName(a.now(), req.Format))
	}
	if target == "" {
		return formatted, nil
	}
	if err := os.WriteFile(target, []byte(formatted), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logger.Info("report written", "path", target)
	return "Report written to " + target + "\n", nil
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}
