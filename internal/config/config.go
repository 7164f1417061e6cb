package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config is the allocation service configuration.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// Input sources for one allocation snapshot.
	Input struct {
		PatientsFile  string // CSV or XLSX path
		HospitalsFile string
		SuppliersFile string
		IntakeURL     string // optional remote patient CSV endpoint
	}

	// Allocation engine settings.
	Alloc struct {
		SolveBudget time.Duration // wall-clock budget per solve; 0 = unbounded
		Cache       struct {
			KeyPrefix string // result cache key prefix, e.g. "synergy:allocation:"
			ResultTTL int    // seconds
		}
	}

	// Output sinks.
	Output struct {
		JSONFile string // per-patient export JSON path ("" disables)
		Sync     bool   // rewrite canonical tables after allocation
		UseDB    bool   // load snapshot from / persist run to Postgres
		UseCache bool   // publish latest run result to Redis
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "synergy")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Input.PatientsFile = getEnv("ALLOC_PATIENTS_FILE", "patients.csv")
	cfg.Input.HospitalsFile = getEnv("ALLOC_HOSPITALS_FILE", "hospitals.csv")
	cfg.Input.SuppliersFile = getEnv("ALLOC_SUPPLIERS_FILE", "suppliers.csv")
	cfg.Input.IntakeURL = getEnv("ALLOC_INTAKE_URL", "")

	budgetSec := getEnvInt("ALLOC_SOLVE_BUDGET_SEC", 0)
	cfg.Alloc.SolveBudget = time.Duration(budgetSec) * time.Second
	cfg.Alloc.Cache.KeyPrefix = getEnv("CACHE_ALLOC_PREFIX", "synergy:allocation:")
	cfg.Alloc.Cache.ResultTTL = getEnvInt("CACHE_ALLOC_TTL", 300)

	cfg.Output.JSONFile = getEnv("ALLOC_JSON_FILE", "patients_allocation.json")
	cfg.Output.Sync = getEnvBool("ALLOC_SYNC", true)
	cfg.Output.UseDB = getEnvBool("ALLOC_USE_DB", false)
	cfg.Output.UseCache = getEnvBool("ALLOC_USE_CACHE", false)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
