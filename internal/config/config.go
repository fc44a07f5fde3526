package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"DB_PATH" envDefault:"./cardfolio.db"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	BackupDir string `env:"BACKUP_DIR" envDefault:"./backups"`

	PokeAPI  PokeAPI
	Snapshot Snapshot
}

type PokeAPI struct {
	BaseURL           string  `env:"POKEAPI_BASE_URL"`
	RequestsPerSecond float64 `env:"POKEAPI_RPS" envDefault:"5"`
	CacheSize         int     `env:"POKEAPI_CACHE_SIZE" envDefault:"256"`
}

type Snapshot struct {
	Interval         time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"15m"`
	StartImmediately bool          `env:"SNAPSHOT_ON_STARTUP" envDefault:"true"`
}

// MustLoad reads configuration from the environment, after a best-effort
// .env load, and exits on parse failure.
func MustLoad() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
