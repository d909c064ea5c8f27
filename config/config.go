package config

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"empowerher/logger"
)

// Storage backend names accepted by --storage.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all configuration settings for the application.
type Config struct {
	// Server settings
	ListenAddress string
	ListenPort    string

	// Record store settings
	Storage       string
	DbFilePath    string
	SqlitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresDSN   string
	KeyPrefix     string
	EnableBackup  bool

	// Progress settings
	BadgeRulesFile string
	Timezone       string
	Location       *time.Location

	// Authentication settings
	JwtSecret       string // The actual secret key
	JwtSecretFile   string // Path to the file containing the secret
	JwtSecretSource string // Where JwtSecret came from, for the startup log
	TokenLifetime   time.Duration
	BcryptCost      int

	CorsOrigins []string
	LogMode     string
}

const (
	envPrefix = "EMPOWERHER_"

	defaultAddress       = "0.0.0.0"
	defaultPort          = "8080"
	defaultStorage       = StorageFile
	defaultDbFile        = "./empowerher.json" // Relative to working dir
	defaultSqliteFile    = "./empowerher.db"
	defaultRedisAddr     = "localhost:6379"
	defaultKeyPrefix     = "empowerher_"
	defaultEnableBackup  = true
	defaultJwtSecretFile = ""
	defaultJwtKeyFile    = "./empowerher.key" // Written when a key has to be generated
	defaultTokenLifetime = 24 * time.Hour
	defaultBcryptCost    = 12
	defaultLogMode       = "dev"
	defaultTimezone      = "Local"
	defaultCorsOrigins   = "http://localhost:5173,http://localhost:3000"
)

// LoadConfig loads configuration from defaults, environment variables, and command-line flags.
// Command-line flags take precedence over environment variables, which take precedence over defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.ListenAddress, "address", getEnv("LISTEN_ADDRESS", defaultAddress), "Server listen address (Env: EMPOWERHER_LISTEN_ADDRESS)")
	flag.StringVar(&cfg.ListenPort, "port", getEnv("LISTEN_PORT", defaultPort), "Server listen port (Env: EMPOWERHER_LISTEN_PORT)")
	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", defaultStorage), "Record storage backend: memory, file, sqlite, redis, postgres (Env: EMPOWERHER_STORAGE)")
	flag.StringVar(&cfg.DbFilePath, "db-file", getEnv("DB_FILE_PATH", defaultDbFile), "Path to the JSON data file for the file backend (Env: EMPOWERHER_DB_FILE_PATH)")
	flag.StringVar(&cfg.SqlitePath, "sqlite-path", getEnv("SQLITE_PATH", defaultSqliteFile), "Path to the sqlite database (Env: EMPOWERHER_SQLITE_PATH)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", defaultRedisAddr), "Redis address (Env: EMPOWERHER_REDIS_ADDR)")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password (Env: EMPOWERHER_REDIS_PASSWORD)")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number (Env: EMPOWERHER_REDIS_DB)")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", getEnv("POSTGRES_DSN", ""), "Postgres connection string (Env: EMPOWERHER_POSTGRES_DSN)")
	flag.StringVar(&cfg.KeyPrefix, "key-prefix", getEnv("KEY_PREFIX", defaultKeyPrefix), "Prefix for every persisted collection key (Env: EMPOWERHER_KEY_PREFIX)")
	flag.BoolVar(&cfg.EnableBackup, "enable-backup", getEnvBool("ENABLE_BACKUP", defaultEnableBackup), "Keep a .bak copy before each file save (Env: EMPOWERHER_ENABLE_BACKUP)")
	flag.StringVar(&cfg.BadgeRulesFile, "badge-rules", getEnv("BADGE_RULES", ""), "YAML file overriding the built-in badge catalog and rules (Env: EMPOWERHER_BADGE_RULES)")
	flag.StringVar(&cfg.Timezone, "timezone", getEnv("TIMEZONE", defaultTimezone), "IANA zone used to compute streak calendar days (Env: EMPOWERHER_TIMEZONE)")
	flag.StringVar(&cfg.JwtSecretFile, "jwt-secret-file", getEnv("JWT_SECRET_FILE", defaultJwtSecretFile), "Path to file containing JWT secret key (Env: EMPOWERHER_JWT_SECRET_FILE)")
	tokenLifetimeStr := flag.String("token-lifetime", getEnv("TOKEN_LIFETIME", defaultTokenLifetime.String()), "Lifetime of issued tokens (Env: EMPOWERHER_TOKEN_LIFETIME)")
	flag.IntVar(&cfg.BcryptCost, "bcrypt-cost", getEnvInt("BCRYPT_COST", defaultBcryptCost), "bcrypt cost for password hashes (Env: EMPOWERHER_BCRYPT_COST)")
	corsOrigins := flag.String("cors-origins", getEnv("CORS_ORIGINS", defaultCorsOrigins), "Comma separated browser origins allowed to call the API (Env: EMPOWERHER_CORS_ORIGINS)")
	flag.StringVar(&cfg.LogMode, "log-mode", getEnv("LOG_MODE", defaultLogMode), "Logger mode: dev or prod (Env: EMPOWERHER_LOG_MODE)")

	flag.Parse()

	cfg.CorsOrigins = splitList(*corsOrigins)

	var err error
	cfg.TokenLifetime, err = time.ParseDuration(*tokenLifetimeStr)
	if err != nil || cfg.TokenLifetime <= 0 {
		return nil, fmt.Errorf("invalid token-lifetime '%s'", *tokenLifetimeStr)
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("bcrypt-cost %d out of range 4..31", cfg.BcryptCost)
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case StorageMemory, StorageFile, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("storage 'postgres' requires --postgres-dsn")
		}
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Storage)
	}

	if cfg.KeyPrefix == "" {
		return nil, fmt.Errorf("key-prefix must not be empty")
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
	}

	if err := resolveJwtSecret(cfg); err != nil {
		return nil, err
	}

	// File backed storage paths are resolved up front so a bad path fails at startup.
	if cfg.DbFilePath, err = resolveFilePath("db-file", cfg.DbFilePath); err != nil {
		return nil, err
	}
	if cfg.SqlitePath, err = resolveFilePath("sqlite-path", cfg.SqlitePath); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveJwtSecret fills cfg.JwtSecret.
// Priority: File (flag/env) > EMPOWERHER_JWT_SECRET > default key file > generate.
func resolveJwtSecret(cfg *Config) error {
	if cfg.JwtSecretFile != "" {
		secretBytes, err := os.ReadFile(cfg.JwtSecretFile)
		if err == nil {
			if s := strings.TrimSpace(string(secretBytes)); s != "" {
				cfg.JwtSecret = s
				cfg.JwtSecretSource = fmt.Sprintf("File (%s)", cfg.JwtSecretFile)
				return nil
			}
		}
	}

	if s := strings.TrimSpace(getEnv("JWT_SECRET", "")); s != "" {
		cfg.JwtSecret = s
		cfg.JwtSecretSource = "Environment Variable (EMPOWERHER_JWT_SECRET)"
		return nil
	}

	if secretBytes, err := os.ReadFile(defaultJwtKeyFile); err == nil {
		if s := strings.TrimSpace(string(secretBytes)); s != "" {
			cfg.JwtSecret = s
			cfg.JwtSecretSource = fmt.Sprintf("Default Key File (%s)", defaultJwtKeyFile)
			return nil
		}
	}

	newSecret, err := generateRandomKey(32)
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JwtSecret = newSecret
	cfg.JwtSecretSource = "Generated (In Memory)"
	if err := os.WriteFile(defaultJwtKeyFile, []byte(newSecret), 0600); err == nil {
		cfg.JwtSecretSource = fmt.Sprintf("Generated & Saved (%s)", defaultJwtKeyFile)
	}
	return nil
}

// resolveFilePath makes path absolute and rejects directories.
// A missing file is fine, it is created on first write.
func resolveFilePath(name, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not determine absolute path for %s '%s': %w", name, path, err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s '%s' points to a directory, not a file", name, abs)
	}
	return abs, nil
}

// Log prints the loaded configuration. Credentials are never printed.
func (cfg *Config) Log(l *logger.Logger) {
	l.Info("configuration loaded",
		"address", cfg.ListenAddress,
		"port", cfg.ListenPort,
		"storage", cfg.Storage,
		"db_file", cfg.DbFilePath,
		"sqlite_path", cfg.SqlitePath,
		"redis_addr", cfg.RedisAddr,
		"key_prefix", cfg.KeyPrefix,
		"backup", cfg.EnableBackup,
		"badge_rules", cfg.BadgeRulesFile,
		"timezone", cfg.Location.String(),
		"jwt_secret_source", cfg.JwtSecretSource,
		"token_lifetime", cfg.TokenLifetime.String(),
		"bcrypt_cost", cfg.BcryptCost,
		"cors_origins", cfg.CorsOrigins,
		"log_mode", cfg.LogMode,
	)
}

// getEnv retrieves EMPOWERHER_<key> or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		return value
	}
	return fallback
}

// getEnvBool recognizes "true", "1", "yes" (case-insensitive) as true.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// generateRandomKey returns length random bytes hex-encoded.
func generateRandomKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
