package config

// Config represents the full application configuration.
type Config struct {
	Review        ReviewConfig        `yaml:"review"`
	Limits        LimitsConfig        `yaml:"limits"`
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ReviewConfig tunes the annotation session.
type ReviewConfig struct {
	ContextMargin  int `yaml:"contextMargin"`
	MaxAnnotations int `yaml:"maxAnnotations"`
}

// LimitsConfig caps the diff accepted from callers. The parser itself is
// unbounded; these are presentation-layer policy.
type LimitsConfig struct {
	MaxFiles int `yaml:"maxFiles"`
	MaxLines int `yaml:"maxLines"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"`
}

// StoreConfig configures the export-history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}
