package config

import "time"

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "pyscript.toml"

const DefaultTitle = "PyScript App"

type Config struct {
	Wrap          Wrap          `toml:"wrap"`
	Runtime       Runtime       `toml:"runtime"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Wrap struct {
	Title string `toml:"title"`
}

type Runtime struct {
	ReleaseURL string `toml:"release_url"`
}

type Scan struct {
	ExcludeDirs []string `toml:"exclude_dirs"`
}

type Watch struct {
	Debounce          time.Duration `toml:"debounce"`
	RebuildsPerSecond float64       `toml:"rebuilds_per_second"`
	Burst             int           `toml:"burst"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
