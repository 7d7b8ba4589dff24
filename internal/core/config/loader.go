package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"pyscript/internal/core/errors"
	"pyscript/internal/engine/resolver"
	"pyscript/internal/ui/render"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "cannot read config"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid config"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.IsCode(err, errors.CodeNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	cfg.Wrap.Title = strings.TrimSpace(cfg.Wrap.Title)
	if cfg.Wrap.Title == "" {
		cfg.Wrap.Title = DefaultTitle
	}

	cfg.Runtime.ReleaseURL = strings.TrimRight(strings.TrimSpace(cfg.Runtime.ReleaseURL), "/")
	if cfg.Runtime.ReleaseURL == "" {
		cfg.Runtime.ReleaseURL = render.DefaultReleaseURL
	}

	if cfg.Scan.ExcludeDirs == nil {
		cfg.Scan.ExcludeDirs = append([]string(nil), resolver.DefaultExcludeDirs...)
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.RebuildsPerSecond == 0 {
		cfg.Watch.RebuildsPerSecond = 2
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 1
	}

	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}
