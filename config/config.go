package config

import (
	"os"
	"reflect"
	"strings"

	"github.com/habiliai/agentloop/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "AGENTLOOP"

type Config struct {
	Model       ModelConfig     `mapstructure:"model"`
	Log         LogConfig       `mapstructure:"log"`
	Memory      MemoryConfig    `mapstructure:"memory"`
	Tool        ToolConfig      `mapstructure:"tool"`
	Knowledge   KnowledgeConfig `mapstructure:"knowledge"`
	Team        TeamConfig      `mapstructure:"team"`
	Single      LoopConfig      `mapstructure:"single"`
	Coordinator LoopConfig      `mapstructure:"coordinator"`
	Worker      LoopConfig      `mapstructure:"worker"`
}

func NewConfig() *Config {
	return &Config{
		Model:       *NewModelConfig(),
		Log:         *NewLogConfig(),
		Memory:      *NewMemoryConfig(),
		Tool:        *NewToolConfig(),
		Knowledge:   *NewKnowledgeConfig(),
		Team:        *NewTeamConfig(),
		Single:      *NewSingleLoopConfig(),
		Coordinator: *NewCoordinatorLoopConfig(),
		Worker:      *NewWorkerLoopConfig(),
	}
}

// Load layers, from lowest to highest precedence: built-in defaults, the
// optional config file (YAML, JSON or TOML), .env and the process
// environment. Environment keys are AGENTLOOP_<SECTION>_<KEY>, e.g.
// AGENTLOOP_MODEL_BASE_URL.
func Load(file string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.Wrapf(err, "failed to load .env")
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(Config{}))

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", file)
		}
	}

	conf := NewConfig()
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config")
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown model provider %q", c.Model.Provider)
	}
	switch c.Memory.Backend {
	case MemoryBackendFile, MemoryBackendSqlite:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", c.Memory.Backend)
	}
	for name, loop := range map[string]LoopConfig{"single": c.Single, "coordinator": c.Coordinator, "worker": c.Worker} {
		if loop.MaxRounds <= 0 {
			return errors.Wrapf(errors.ErrInvalidConfig, "%s.max_rounds must be positive", name)
		}
	}
	return nil
}

// bindEnvs registers every leaf key of t with viper so AutomaticEnv can
// override keys that never appear in a config file.
func bindEnvs(v *viper.Viper, t reflect.Type, parts ...string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := append(append([]string{}, parts...), tag)
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() == t.PkgPath() {
			bindEnvs(v, field.Type, key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
