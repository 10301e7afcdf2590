package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	GrpcPort          string        `mapstructure:"GRPC_PORT"`
	RedisUrl          string        `mapstructure:"REDIS_URL"`
	MongoUri          string        `mapstructure:"MONGO_URI"`
	MongoDatabase     string        `mapstructure:"MONGO_DATABASE"`
	ProfileCollection string        `mapstructure:"PROFILE_COLLECTION"`
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionValidity   time.Duration `mapstructure:"SESSION_VALIDITY"`
	SessionWarning    time.Duration `mapstructure:"SESSION_WARNING"`
	WatcherInterval   time.Duration `mapstructure:"WATCHER_INTERVAL"`
	IsLocalCors       bool          `mapstructure:"LOCAL_CORS"`
	StrictProgress    bool          `mapstructure:"STRICT_PROGRESS"`
}

var ErrNoSessionSecret = errors.New("SESSION_SECRET is not configured")

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GRPC_PORT", "8082")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "edu_progress")
	v.SetDefault("PROFILE_COLLECTION", "users")
	v.SetDefault("SESSION_VALIDITY", 24*time.Hour)
	v.SetDefault("SESSION_WARNING", 5*time.Minute)
	v.SetDefault("WATCHER_INTERVAL", time.Minute)
	v.SetDefault("LOCAL_CORS", false)
	v.SetDefault("STRICT_PROGRESS", false)
}

// Setup loads the configuration of the HTTP and gRPC servers, which need a
// session secret.
func Setup(cfgPath string) (*Config, error) {
	cfg, err := Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, ErrNoSessionSecret
	}
	return cfg, nil
}

// Load reads cfgPath (a .env file) and overlays process environment.
// A missing file is not an error: everything can come from the environment.
func Load(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	_ = v.BindEnv("SESSION_SECRET")

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
