package cli

import "scriptest/internal/config"

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
	MetricsFile string
	LogLevel    string
	Plain       bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:  f.ConfigFile,
		BaseDir:     f.BaseDir,
		Directories: f.Directories,
		Suffix:      f.Suffix,
		Workers:     f.Workers,
		NameFilter:  f.NameFilter,
		OnlyFailed:  f.OnlyFailed,
		ReportDir:   f.ReportDir,
		Formats:     f.Formats,
		NoProgress:  f.NoProgress,
		Plain:       f.Plain,
		MetricsFile: f.MetricsFile,
		LogLevel:    f.LogLevel,
	}
}
