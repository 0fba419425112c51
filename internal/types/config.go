package types

type RunMode string

const (
	// ModeLocal runs the API server, the sync controller and the store watcher
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server and the sync controller without the store watcher
	ModeAPI RunMode = "api"
	// ModeCLI is used by one-shot CLI invocations, nothing is started in the background
	ModeCLI RunMode = "cli"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StorageDriver selects the backend of the durable local store
type StorageDriver string

const (
	StorageDriverSQLite StorageDriver = "sqlite"
	StorageDriverMemory StorageDriver = "memory"
)
