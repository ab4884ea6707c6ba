package config

type LogConfig struct {
	LogLevel   string `mapstructure:"level"`
	LogHandler string `mapstructure:"handler"`
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:   "info",
		LogHandler: "default",
	}
}
