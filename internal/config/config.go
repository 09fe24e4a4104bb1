// Package config loads the ambient knobs SPEC_FULL.md §8/§9 introduce around the
// core's fixed constants: port, routing bandwidth, a preview fps cap, and a small
// hot-reloadable subset (log level, rate-limit thresholds). Keepalive parameters are not
// configurable here.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

// Config is the full set of ambient knobs. Only LogLevel and RateLimitPerMinute are
// hot-reloadable (see Watcher); the rest take effect only at startup.
type Config struct {
	Port               int           `yaml:"port"`
	LogLevel           string        `yaml:"log_level"`
	RoutingBandwidth   string        `yaml:"routing_bandwidth"` // "highest" | "lowest"
	PreviewFPSCap      float64       `yaml:"preview_fps_cap"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
}

// Default returns the built-in defaults matching the original hardcoded behavior.
func Default() Config {
	return Config{
		Port:               8080,
		LogLevel:           "info",
		RoutingBandwidth:   "highest",
		PreviewFPSCap:      24,
		RateLimitPerMinute: 600,
	}
}

// Bandwidth translates RoutingBandwidth into the ndi.Bandwidth the receiver pool uses.
func (c Config) Bandwidth() ndi.Bandwidth {
	if c.RoutingBandwidth == "lowest" {
		return ndi.BandwidthLowest
	}
	return ndi.BandwidthHighest
}

// Load reads a YAML file at path over the defaults. A missing file is not an error — it
// just means "use defaults", matching the optional-config-file precedent in
// References/orion-prototipe.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Watcher applies the hot-reloadable subset of a config file live as it changes on disk,
// the way References/orion-prototipe/internal/core/hotreload.go applies a config subset
// without a restart.
type Watcher struct {
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	current Config

	onReload func(Config)
}

// NewWatcher constructs a Watcher seeded with initial and, if path is nonempty, begins
// watching it for changes via fsnotify. onReload is invoked (best-effort) after each
// successful reparse.
func NewWatcher(path string, initial Config, log *slog.Logger, onReload func(Config)) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{path: path, log: log, current: initial, onReload: onReload}
	if path == "" {
		return w, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	go w.watch(watcher)
	return w, nil
}

func (w *Watcher) watch(watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for event := range watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		cfg, err := Load(w.path)
		if err != nil {
			w.log.Warn("config: hot-reload failed", "error", err)
			continue
		}
		w.mu.Lock()
		prevLevel, prevRate := w.current.LogLevel, w.current.RateLimitPerMinute
		w.current.LogLevel = cfg.LogLevel
		w.current.RateLimitPerMinute = cfg.RateLimitPerMinute
		reloaded := w.current
		w.mu.Unlock()

		if prevLevel != cfg.LogLevel || prevRate != cfg.RateLimitPerMinute {
			w.log.Info("config: applied hot-reloadable changes", "log_level", cfg.LogLevel, "rate_limit_per_minute", cfg.RateLimitPerMinute)
			if w.onReload != nil {
				w.onReload(reloaded)
			}
		}
	}
}

// Current returns the latest applied configuration, including any hot-reloaded fields.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
