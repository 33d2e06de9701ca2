package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Discovery settings
	BaseDir     string   `yaml:"base_dir"`
	Directories []string `yaml:"directories"`
	Suffix      string   `yaml:"suffix"`

	// Execution settings
	Command []string          `yaml:"command"`
	Workers int               `yaml:"workers"`
	Env     map[string]string `yaml:"env"`

	// Report settings
	ReportDir      string   `yaml:"report_dir"`
	ReportFilename string   `yaml:"report_filename"`
	Formats        []string `yaml:"formats"`

	// Results storage used by list, failures and run --failed
	Storage StorageConfig `yaml:"storage"`

	// Optional prometheus textfile written after every run
	MetricsFile string `yaml:"metrics_file"`

	LogLevel string `yaml:"log_level"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// StorageConfig selects where run results are persisted
type StorageConfig struct {
	Driver string `yaml:"driver"` // json, mysql or sqlite
	Path   string `yaml:"path"`   // results file for the json driver
	DSN    string `yaml:"dsn"`    // data source name for SQL drivers
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile  string
	BaseDir     string
	Directories []string
	Suffix      string
	Workers     int
	NameFilter  string
	OnlyFailed  bool
	ReportDir   string
	Formats     []string
	NoProgress  bool
	Plain       bool // failures: print instead of opening the viewer
	MetricsFile string
	LogLevel    string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		BaseDir:        DefaultBaseDir,
		Suffix:         DefaultSuffix,
		Workers:        DefaultWorkers,
		ReportDir:      DefaultReportDir,
		ReportFilename: DefaultReportFilename,
		Storage: StorageConfig{
			Driver: DefaultStorageDriver,
			Path:   DefaultResultsFile,
		},
		LogLevel: DefaultLogLevel,
		Env:      map[string]string{},
	}
	// Copy defaults so callers can't mutate the package-level slices
	cfg.Directories = append([]string(nil), DefaultDirectories...)
	cfg.Command = append([]string(nil), DefaultCommand...)
	cfg.Formats = append([]string(nil), DefaultFormats...)
	return cfg
}

// Apply folds parsed command-line flags into the config. Flags win over file values.
func (c *Config) Apply(flags Flags) {
	c.Flags = flags

	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if len(flags.Directories) > 0 {
		c.Directories = append([]string(nil), flags.Directories...)
	}
	if flags.Suffix != "" {
		c.Suffix = flags.Suffix
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ReportDir != "" {
		c.ReportDir = flags.ReportDir
	}
	if len(flags.Formats) > 0 {
		c.Formats = append([]string(nil), flags.Formats...)
	}
	if flags.MetricsFile != "" {
		c.MetricsFile = flags.MetricsFile
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// Validate checks the values a run cannot proceed without
func (c *Config) Validate() error {
	if c.Suffix == "" {
		return fmt.Errorf("suffix must not be empty")
	}
	if len(c.Command) == 0 || strings.TrimSpace(c.Command[0]) == "" {
		return fmt.Errorf("command must name an interpreter")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report_dir must not be empty")
	}
	for _, f := range c.Formats {
		switch f {
		case "json", "html", "junit":
		default:
			return fmt.Errorf("unknown report format %q", f)
		}
	}
	switch c.Storage.Driver {
	case "json":
	case "mysql", "sqlite":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %s requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// ResolvePath makes p absolute relative to the base directory
func (c *Config) ResolvePath(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.BaseDir, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetReportDir returns the absolute report directory
func (c *Config) GetReportDir() string {
	return c.ResolvePath(c.ReportDir)
}

// GetResultsPath returns the full path to the json results file.
// Resolves to an absolute path so run, list and failures always share the same file regardless of cwd.
func (c *Config) GetResultsPath() string {
	return c.ResolvePath(c.Storage.Path)
}

// GetConfigPath returns the config file to load and whether it was explicitly requested
func (c *Config) GetConfigPath() (string, bool) {
	if c.Flags.ConfigFile != "" {
		return c.Flags.ConfigFile, true
	}
	base := c.BaseDir
	if c.Flags.BaseDir != "" {
		base = c.Flags.BaseDir
	}
	return filepath.Join(base, DefaultConfigFile), false
}
