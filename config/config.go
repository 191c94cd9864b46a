package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CacheConfig selects and parameterizes the task-list cache.
// Driver is "redis" or "memory".
type CacheConfig struct {
	Driver    string        `mapstructure:"driver"`
	Host      string        `mapstructure:"host"`
	Port      string        `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	TTL       time.Duration `mapstructure:"ttl"`
	Namespace string        `mapstructure:"namespace"`
}

// StorageConfig parameterizes the S3-compatible object store holding
// profile photos.
type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"accessKey"`
	SecretKey     string `mapstructure:"secretKey"`
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
	// ProtectUpload gates POST /profile/photo behind authentication. The
	// original deployment left the upload public, so this defaults to false.
	ProtectUpload bool `mapstructure:"protectUpload"`
}

type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	Expiry    time.Duration `mapstructure:"expiry"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcryptCost"`
}

type ServerConfig struct {
	HTTPPort string        `mapstructure:"HTTPPort"`
	Timeout  time.Duration `mapstructure:"HTTPTimeout"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Storage StorageConfig `mapstructure:"storage"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Server  ServerConfig  `mapstructure:"server"`
}

// envBindings maps config keys to the environment variables recognized by
// the deployment.
var envBindings = map[string]string{
	"repositories.postgres.host":     "DB_HOST",
	"repositories.postgres.port":     "DB_PORT",
	"repositories.postgres.username": "DB_USER",
	"repositories.postgres.password": "DB_PASSWORD",
	"repositories.postgres.db":       "DB_NAME",
	"cache.driver":                   "CACHE_DRIVER",
	"cache.host":                     "CACHE_HOST",
	"cache.port":                     "CACHE_PORT",
	"cache.password":                 "CACHE_PASSWORD",
	"cache.ttl":                      "CACHE_TTL",
	"cache.namespace":                "CACHE_NAMESPACE",
	"storage.endpoint":               "STORAGE_ENDPOINT",
	"storage.accessKey":              "STORAGE_ACCESS_KEY",
	"storage.secretKey":              "STORAGE_SECRET_KEY",
	"storage.bucket":                 "STORAGE_BUCKET",
	"storage.publicBaseURL":          "STORAGE_PUBLIC_URL",
	"storage.protectUpload":          "STORAGE_PROTECT_UPLOAD",
	"jwt.secretKey":                  "JWT_SECRET",
	"jwt.expiry":                     "JWT_EXPIRES_IN",
	"jwt.issuer":                     "JWT_ISSUER",
	"jwt.audience":                   "JWT_AUDIENCE",
	"auth.bcryptCost":                "BCRYPT_COST",
	"server.HTTPPort":                "PORT",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// Try to load file-based config, falling back to the embedded copy.
	if err := v.ReadInConfig(); err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// validate enforces the settings the process cannot start without.
func (c *Config) validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Cache.Driver != "redis" && c.Cache.Driver != "memory" {
		return fmt.Errorf("unsupported cache driver %q", c.Cache.Driver)
	}
	if c.Storage.Endpoint != "" {
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required")
		}
	}
	return nil
}
