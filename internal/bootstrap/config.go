package bootstrap

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	StorageBackend string        `mapstructure:"STORAGE_BACKEND"`
	StorageTimeout time.Duration `mapstructure:"STORAGE_TIMEOUT"`
	SaveDir        string        `mapstructure:"SAVE_DIR"`
	RedisUrl       string        `mapstructure:"REDIS_URL"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	MongoUri       string        `mapstructure:"MONGO_URI"`
	MongoDatabase  string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors    bool          `mapstructure:"LOCAL_CORS"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":     ":8080",
	"STORAGE_BACKEND": "memory",
	"STORAGE_TIMEOUT": "5s",
	"SAVE_DIR":        "saved_games",
	"REDIS_URL":       "localhost:6379",
	"REDIS_PASSWORD":  "",
	"REDIS_DB":        0,
	"MONGO_URI":       "mongodb://localhost:27017",
	"MONGO_DATABASE":  "chess",
	"LOCAL_CORS":      false,
	"LOG_LEVEL":       "info",
}

// Setup reads cfgPath when it exists and lets environment variables
// override both the file and the defaults.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
