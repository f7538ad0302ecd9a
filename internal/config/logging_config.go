package config

const (
	logLevelVar = "LOG_LEVEL"
	logFileVar  = "LOG_FILE"
)

type LoggingConfig interface {
	GetLogLevel() string
	GetLogFile() string
}

type Logging struct{}

var _ LoggingConfig = Logging{}

func (Logging) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetLogFile is empty when logs go to the console.
func (Logging) GetLogFile() string {
	return GetEnv(logFileVar, "")
}
