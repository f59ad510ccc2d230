package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	StaticDir    string        `mapstructure:"static_dir"`
}

type DataConfig struct {
	Sources             []string `mapstructure:"sources"`
	Dir                 string   `mapstructure:"dir"`
	ValueField          string   `mapstructure:"value_field"`
	GroupField          string   `mapstructure:"group_field"`
	ValidateCoordinates bool     `mapstructure:"validate_coordinates"`
	Index               string   `mapstructure:"index"`
	H3Resolution        int      `mapstructure:"h3_resolution"`
	Workers             int      `mapstructure:"workers"`
}

type SessionConfig struct {
	MaxSessions   int           `mapstructure:"max_sessions"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	QueueSize     int           `mapstructure:"queue_size"`
	ResolveClicks bool          `mapstructure:"resolve_clicks"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix prefixes every environment override: BURNVIEW_DATA_INDEX → data.index.
const EnvPrefix = "BURNVIEW"

// Load reads configuration from defaults, an optional config.yaml, an
// optional .env file and environment variables, in increasing precedence.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return decode(v)
}

// Field names of the default dataset, area_quemada_2024_4326.geojson.
const (
	DefaultValueField = "area_deteccion"
	DefaultGroupField = "localidad_proxima"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("data.sources", []string{"./static/area_quemada_2024_4326.geojson"})
	v.SetDefault("data.dir", "")
	v.SetDefault("data.value_field", DefaultValueField)
	v.SetDefault("data.group_field", DefaultGroupField)
	v.SetDefault("data.validate_coordinates", true)
	v.SetDefault("data.index", "linear")
	v.SetDefault("data.h3_resolution", 0)
	v.SetDefault("data.workers", 0)
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.queue_size", 64)
	v.SetDefault("session.resolve_clicks", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env overrides arrive as one comma-separated string.
	cfg.Data.Sources = splitList(strings.Join(cfg.Data.Sources, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if len(c.Data.Sources) == 0 && c.Data.Dir == "" {
		errs = append(errs, "data.sources or data.dir is required")
	}
	if c.Data.ValueField == "" {
		errs = append(errs, "data.value_field is required")
	}
	if c.Data.GroupField == "" {
		errs = append(errs, "data.group_field is required")
	}
	switch c.Data.Index {
	case "linear", "rtree":
	default:
		errs = append(errs, fmt.Sprintf("data.index must be linear or rtree, got %q", c.Data.Index))
	}
	if c.Data.H3Resolution < 0 || c.Data.H3Resolution > 15 {
		errs = append(errs, fmt.Sprintf("data.h3_resolution must be 0-15, got %d", c.Data.H3Resolution))
	}
	if c.Data.Workers < 0 {
		errs = append(errs, "data.workers must not be negative")
	}
	if c.Session.MaxSessions < 0 {
		errs = append(errs, "session.max_sessions must not be negative")
	}
	if c.Session.IdleTimeout < 0 {
		errs = append(errs, "session.idle_timeout must not be negative")
	}
	if c.Session.QueueSize <= 0 {
		errs = append(errs, "session.queue_size must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
