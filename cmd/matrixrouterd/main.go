// Command matrixrouterd runs the matrix routing engine and its HTTP control surface.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/e7canasta/matrixrouter/internal/app"
	"github.com/e7canasta/matrixrouter/internal/config"
	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "optional YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	jsonLogs := flag.Bool("json-logs", false, "force JSON log output even on a TTY")
	flag.Parse()

	log := newLogger(*debug, *jsonLogs)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		return 1
	}
	if flag.NArg() > 0 {
		port, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Error("invalid port argument", "arg", flag.Arg(0), "error", err)
			return 1
		}
		cfg.Port = port
	}

	if _, err := config.NewWatcher(*configPath, cfg, log, func(reloaded config.Config) {
		log.Info("config: reloaded", "log_level", reloaded.LogLevel)
	}); err != nil {
		log.Error("config watcher failed", "error", err)
		return 1
	}

	svc, err := app.New(cfg, ndi.NewPort(), log)
	if err != nil {
		log.Error("initialization failed", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("matrixrouterd starting", "port", cfg.Port)
	if err := svc.Run(ctx); err != nil {
		log.Error("service stopped with error", "error", err)
		return 1
	}
	log.Info("matrixrouterd stopped cleanly")
	return 0
}

func newLogger(debug, forceJSON bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if !forceJSON && isTerminal(os.Stdout) {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
