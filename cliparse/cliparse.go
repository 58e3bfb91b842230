package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database type constants
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int
	DatabaseType string // sqlite or postgres
	DatabaseURL  string // postgres connection string
	DatabasePath string // sqlite file path
	PoolSize     int
	PoolTimeout  time.Duration
}

// ParseFlags validates flags, loading a .env file and environment variables
// as fallbacks.
func ParseFlags(args []string) (Config, error) {
	// Dev convenience; absence of a .env file is fine
	_ = godotenv.Load()

	var cfg Config
	var poolTimeoutMS int

	fs := flag.NewFlagSet("radio-station", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "PostgreSQL connection URL")
	fs.StringVar(&cfg.DatabasePath, "f", "", "SQLite database file")
	fs.IntVar(&cfg.PoolSize, "pool", 0, "Max PostgreSQL connections")
	fs.IntVar(&poolTimeoutMS, "pool-timeout", 0, "Connection acquisition timeout (ms)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == DatabasePostgres && cfg.DatabaseURL == "" {
		return Config{}, errors.New("postgres requires a database URL (use -d or DATABASE_URL env)")
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = os.Getenv("DATABASE_PATH")
		if cfg.DatabasePath == "" {
			cfg.DatabasePath = "radio.db"
		}
	}

	if cfg.PoolSize == 0 {
		if sizeStr := os.Getenv("DB_POOL_SIZE"); sizeStr != "" {
			size, err := strconv.Atoi(sizeStr)
			if err != nil || size < 1 {
				return Config{}, errors.New("invalid DB_POOL_SIZE env variable")
			}
			cfg.PoolSize = size
		} else {
			cfg.PoolSize = 10
		}
	}

	if poolTimeoutMS == 0 {
		if msStr := os.Getenv("DB_POOL_TIMEOUT_MS"); msStr != "" {
			ms, err := strconv.Atoi(msStr)
			if err != nil || ms < 1 {
				return Config{}, errors.New("invalid DB_POOL_TIMEOUT_MS env variable")
			}
			poolTimeoutMS = ms
		} else {
			poolTimeoutMS = 5000
		}
	}
	cfg.PoolTimeout = time.Duration(poolTimeoutMS) * time.Millisecond

	return cfg, nil
}
