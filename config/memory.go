package config

const (
	MemoryBackendFile   = "file"
	MemoryBackendSqlite = "sqlite"
)

type MemoryConfig struct {
	// Backend is "file" (one JSON document per concern under Dir) or "sqlite".
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	SqlitePath string `mapstructure:"sqlite_path"`

	FactCapacity  int `mapstructure:"fact_capacity"`
	ErrorLogLimit int `mapstructure:"error_log_limit"`
	SessionLimit  int `mapstructure:"session_limit"`
}

func NewMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		Backend:       MemoryBackendFile,
		Dir:           "memory",
		SqlitePath:    "memory/memory.db",
		FactCapacity:  50,
		ErrorLogLimit: 100,
		SessionLimit:  30,
	}
}
