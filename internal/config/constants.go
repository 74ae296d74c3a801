package config

// Version is the argbind release.
const Version = "0.3.0"

// ConfigFileNames are the file names FindConfig looks for, in order.
var ConfigFileNames = []string{"argbind.yaml", "argbind.yml"}

// Environment variables
const (
	ConfigEnv  = "ARGBIND_CONFIG"
	NoColorEnv = "NO_COLOR"
)

// Output formats
const (
	FormatShell = "sh"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Defaults
const (
	DefaultGRPCAddr       = "localhost:7070"
	DefaultHTTPAddr       = "localhost:7071"
	DefaultRetention      = "168h"
	DefaultPruneEvery     = "5m"
	DefaultHistoryLimit   = 50
	DefaultServerCallSite = "argbind-server"
)
