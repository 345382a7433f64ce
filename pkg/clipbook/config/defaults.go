package config

// Default configuration values.
const (
	DefaultBackend       = "file"
	DefaultLibraryFile   = "clips.yaml"
	DefaultRetentionDays = 30
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = "5MB"
	DefaultLogMaxBackups = 3
	DefaultFormat        = "tree"
)
