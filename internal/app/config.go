package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/utils"
)

type Config struct {
	ServiceName  string
	Environment  string
	Version      string
	Port         string
	AllowOrigins []string

	DBDriver   string
	SQLitePath string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	BlobRoot  string
	BlobDepth int

	AllocAlphabet    string
	AllocLength      int
	AllocMaxAttempts int
}

// fileConfig is the optional YAML overlay loaded from CONFIG_FILE. Every field
// is a pointer so absent keys keep their env/default values.
type fileConfig struct {
	ServiceName      *string  `yaml:"service_name"`
	Environment      *string  `yaml:"environment"`
	Port             *string  `yaml:"port"`
	AllowOrigins     []string `yaml:"allow_origins"`
	DBDriver         *string  `yaml:"db_driver"`
	SQLitePath       *string  `yaml:"sqlite_path"`
	BlobRoot         *string  `yaml:"blob_root"`
	BlobDepth        *int     `yaml:"blob_depth"`
	AllocAlphabet    *string  `yaml:"alloc_alphabet"`
	AllocLength      *int     `yaml:"alloc_length"`
	AllocMaxAttempts *int     `yaml:"alloc_max_attempts"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		ServiceName:      utils.GetEnv("SERVICE_NAME", "blueprint-backend", log),
		Environment:      utils.GetEnv("ENVIRONMENT", "development", log),
		Version:          utils.GetEnv("SERVICE_VERSION", "dev", log),
		Port:             utils.GetEnv("PORT", "8080", log),
		DBDriver:         utils.GetEnv("DB_DRIVER", "postgres", log),
		SQLitePath:       utils.GetEnv("SQLITE_PATH", "blueprints.db", log),
		JWTSecretKey:     utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		BlobRoot:         utils.GetEnv("BLOB_ROOT", "/var/lib/blueprints", log),
		BlobDepth:        utils.GetEnvAsInt("BLOB_DEPTH", 10, log),
		AllocAlphabet:    utils.GetEnv("ALLOC_ALPHABET", "abcdefghijklmnopqrstuvwxyz0123456789", log),
		AllocLength:      utils.GetEnvAsInt("ALLOC_LENGTH", 8, log),
		AllocMaxAttempts: utils.GetEnvAsInt("ALLOC_MAX_ATTEMPTS", 50, log),
	}
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	cfg.AccessTokenTTL = time.Duration(accessTokenTTLSeconds) * time.Second

	origins := utils.GetEnv("ALLOW_ORIGINS", "http://localhost:3000", log)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyConfigFile(&cfg, path); err != nil {
			log.Warn("Ignoring config file", "path", path, "error", err)
		} else {
			log.Info("Applied config file overrides", "path", path)
		}
	}
	return cfg
}

func applyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if fc.ServiceName != nil {
		cfg.ServiceName = *fc.ServiceName
	}
	if fc.Environment != nil {
		cfg.Environment = *fc.Environment
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if len(fc.AllowOrigins) > 0 {
		cfg.AllowOrigins = fc.AllowOrigins
	}
	if fc.DBDriver != nil {
		cfg.DBDriver = *fc.DBDriver
	}
	if fc.SQLitePath != nil {
		cfg.SQLitePath = *fc.SQLitePath
	}
	if fc.BlobRoot != nil {
		cfg.BlobRoot = *fc.BlobRoot
	}
	if fc.BlobDepth != nil {
		cfg.BlobDepth = *fc.BlobDepth
	}
	if fc.AllocAlphabet != nil {
		cfg.AllocAlphabet = *fc.AllocAlphabet
	}
	if fc.AllocLength != nil {
		cfg.AllocLength = *fc.AllocLength
	}
	if fc.AllocMaxAttempts != nil {
		cfg.AllocMaxAttempts = *fc.AllocMaxAttempts
	}
	return nil
}
