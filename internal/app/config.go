package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"serverview/internal/domain"
)

// Config is the daemon configuration. The auto-reveal flag is the one
// option the projection engine itself consumes; the rest configures the
// surrounding process.
type Config struct {
	Output        OutputConfig        `mapstructure:"output"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Control       ControlConfig       `mapstructure:"control"`
}

type OutputConfig struct {
	AutoReveal bool `mapstructure:"autoReveal"`
}

type ObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

type ControlConfig struct {
	Script string `mapstructure:"script"`
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("output.autoReveal", domain.DefaultAutoRevealOutput)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("control.script", "")
	return v
}

// LoadConfig reads the config file at path. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	v := newConfigViper()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigStore holds the live configuration and hot-reloads the file so the
// auto-reveal flag can be flipped without restarting the daemon.
type ConfigStore struct {
	logger *zap.Logger
	path   string
	state  atomic.Value // Config
}

func NewConfigStore(path string, logger *zap.Logger) (*ConfigStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	store := &ConfigStore{
		logger: logger.Named("config"),
		path:   path,
	}
	store.state.Store(cfg)
	return store, nil
}

// Current returns the latest loaded configuration.
func (s *ConfigStore) Current() Config {
	return s.state.Load().(Config)
}

// AutoRevealOutput satisfies the output manager's Settings surface.
func (s *ConfigStore) AutoRevealOutput() bool {
	return s.Current().Output.AutoReveal
}

// Reload re-reads the config file and swaps the live snapshot.
func (s *ConfigStore) Reload() error {
	cfg, err := LoadConfig(s.path)
	if err != nil {
		return err
	}
	s.state.Store(cfg)
	return nil
}

// Watch re-reads the config file on filesystem changes, debounced, until
// ctx is canceled. Safe to skip when no config file is in use.
func (s *ConfigStore) Watch(ctx context.Context) {
	if s.path == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("config watcher failed", zap.Error(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(s.path); err != nil {
		s.logger.Warn("config watcher add failed", zap.String("path", s.path), zap.Error(err))
		return
	}

	debounce := time.Duration(domain.DefaultReloadDebounceMillis) * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-watcher.Errors:
			if err != nil {
				s.logger.Warn("config watcher error", zap.Error(err))
			}
		case <-watcher.Events:
			if timer == nil {
				timer = time.NewTimer(debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timerChan(timer):
			timer = nil
			if err := s.Reload(); err != nil {
				s.logger.Warn("config reload failed", zap.Error(err))
				continue
			}
			s.logger.Info("config reloaded", zap.Bool("autoReveal", s.AutoRevealOutput()))
		}
	}
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
