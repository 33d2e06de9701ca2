package config

const (
	// DefaultBaseDir is the directory configured test directories are relative to
	DefaultBaseDir = "."
	// DefaultSuffix identifies a file as a test script
	DefaultSuffix = "_test.js"
	// DefaultReportDir is the report directory, cleaned at the start of every run
	DefaultReportDir = "scriptest-report"
	// DefaultReportFilename is the file stem used for every report format
	DefaultReportFilename = "report"
	// DefaultResultsFile is where the last run is persisted for the json storage driver
	DefaultResultsFile = ".scriptest/last-run.json"
	// DefaultStorageDriver is the default results storage driver
	DefaultStorageDriver = "json"
	// DefaultWorkers runs units sequentially
	DefaultWorkers = 1
	// DefaultLogLevel is the default structured log level
	DefaultLogLevel = "warn"
	// DefaultConfigFile is looked up in the base directory when no --config is given
	DefaultConfigFile = "scriptest.yaml"
)

// DefaultDirectories are scanned in this order when nothing else is configured
var DefaultDirectories = []string{
	"./func_req_tests",
	"./func_req_tests/formTests",
	"./non_Func_req_tests",
}

// DefaultCommand is the interpreter each test file is handed to
var DefaultCommand = []string{"node"}

// DefaultFormats are the report artifacts rendered after a run
var DefaultFormats = []string{"json", "html"}
