package config

import (
	"fmt"
	"net"
	"net/url"

	"pyscript/internal/core/errors"
	"pyscript/internal/engine/resolver"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateRuntime,
		validateScan,
		validateWatch,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.CodeValidationError, fmt.Sprintf(format, args...))
}

func validateRuntime(cfg *Config) error {
	u, err := url.Parse(cfg.Runtime.ReleaseURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return invalid("runtime.release_url must be an http(s) URL, got %q", cfg.Runtime.ReleaseURL)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if _, err := resolver.CompileExcludes(cfg.Scan.ExcludeDirs); err != nil {
		return invalid("scan.exclude_dirs: %v", err)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce must be >= 0, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.RebuildsPerSecond < 0 {
		return invalid("watch.rebuilds_per_second must be positive, got %g", cfg.Watch.RebuildsPerSecond)
	}
	if cfg.Watch.Burst < 1 {
		return invalid("watch.burst must be >= 1, got %d", cfg.Watch.Burst)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return invalid("observability.metrics_addr must be host:port, got %q", addr)
		}
	}
	return nil
}
