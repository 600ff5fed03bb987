package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded from an optional YAML file, then overridden by
// environment variables (a .env file is honored when present).
type Config struct {
	DataDir        string `yaml:"data_dir"`
	LogMode        string `yaml:"log_mode"`
	UsersDB        string `yaml:"users_db"`
	JWTSecret      string `yaml:"jwt_secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl_seconds"`
}

func Default() *Config {
	return &Config{
		DataDir:        "data",
		LogMode:        "development",
		UsersDB:        filepath.Join("data", "users.db"),
		JWTSecret:      "defaultsecret",
		AccessTokenTTL: 3600,
	}
}

// Load reads path (missing file is fine) and applies COURSECORE_* overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.DataDir = getEnv("COURSECORE_DATA_DIR", cfg.DataDir)
	cfg.LogMode = getEnv("COURSECORE_LOG_MODE", cfg.LogMode)
	cfg.UsersDB = getEnv("COURSECORE_USERS_DB", cfg.UsersDB)
	cfg.JWTSecret = getEnv("COURSECORE_JWT_SECRET", cfg.JWTSecret)
	cfg.AccessTokenTTL = getEnvAsInt("COURSECORE_ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	return cfg, nil
}

// DescriptorPath is the metadata document; CoursesDir the blob tree root.
func (c *Config) DescriptorPath() string { return filepath.Join(c.DataDir, "descriptor.json") }
func (c *Config) BackupDir() string      { return filepath.Join(c.DataDir, "backup_descriptor") }
func (c *Config) ACLPath() string        { return filepath.Join(c.DataDir, "acl.json") }
func (c *Config) CoursesDir() string     { return filepath.Join(c.DataDir, "courses") }

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
