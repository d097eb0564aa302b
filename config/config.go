package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// RetryConfig drives the retry loop and circuit breaker around an upstream call.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"maxRetries"`
	InitialInterval time.Duration `mapstructure:"initialInterval"`
	MaxInterval     time.Duration `mapstructure:"maxInterval"`
	BreakerRequests uint32        `mapstructure:"breakerRequests"`
	BreakerInterval time.Duration `mapstructure:"breakerInterval"`
	BreakerTimeout  time.Duration `mapstructure:"breakerTimeout"`
	BreakerFailures uint32        `mapstructure:"breakerFailures"`
}

type StatsUser struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"passwordHash"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Dotenv       string `mapstructure:"dotenv"`
	DatabaseURL  string `mapstructure:"databaseURL"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort     string        `mapstructure:"HTTPPort"`
		Timeout      time.Duration `mapstructure:"HTTPTimeout"`
		ReadTimeout  time.Duration `mapstructure:"readTimeout"`
		WriteTimeout time.Duration `mapstructure:"writeTimeout"`
		IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
	} `mapstructure:"server"`
	Geocoding struct {
		BaseURL  string        `mapstructure:"baseURL"`
		Count    int           `mapstructure:"count"`
		Language string        `mapstructure:"language"`
		Timeout  time.Duration `mapstructure:"timeout"`
		Retry    RetryConfig   `mapstructure:"retry"`
	} `mapstructure:"geocoding"`
	Forecast struct {
		BaseURL string        `mapstructure:"baseURL"`
		Timeout time.Duration `mapstructure:"timeout"`
		Retry   RetryConfig   `mapstructure:"retry"`
	} `mapstructure:"forecast"`
	Geocode struct {
		Store          string `mapstructure:"store"`
		CollapseMisses bool   `mapstructure:"collapseMisses"`
	} `mapstructure:"geocode"`
	Stats struct {
		Realm       string      `mapstructure:"realm"`
		RecentLimit int         `mapstructure:"recentLimit"`
		Users       []StatsUser `mapstructure:"users"`
	} `mapstructure:"stats"`
	RateLimit struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"rateLimit"`
	Warmup struct {
		Cities   []string      `mapstructure:"cities"`
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"warmup"`
	Observability struct {
		ServiceName    string `mapstructure:"serviceName"`
		MetricsEnabled bool   `mapstructure:"metricsEnabled"`
	} `mapstructure:"observability"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DATABASE_URL wins over the assembled postgres section.
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.DatabaseURL = dsn
	}

	if err = config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.Geocode.Store {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("geocode.store must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.Geocode.Store))
	}
	if c.Geocoding.BaseURL == "" {
		errs = append(errs, errors.New("geocoding.baseURL is required"))
	}
	if c.Forecast.BaseURL == "" {
		errs = append(errs, errors.New("forecast.baseURL is required"))
	}
	if c.Geocoding.Timeout <= 0 {
		errs = append(errs, errors.New("geocoding.timeout must be positive"))
	}
	if c.Stats.RecentLimit <= 0 {
		errs = append(errs, errors.New("stats.recentLimit must be positive"))
	}
	for i, u := range c.Stats.Users {
		if u.Username == "" {
			errs = append(errs, fmt.Errorf("stats.users[%d].username is required", i))
		}
		if u.Password == "" && u.PasswordHash == "" {
			errs = append(errs, fmt.Errorf("stats.users[%d] needs password or passwordHash", i))
		}
	}
	return errors.Join(errs...)
}
