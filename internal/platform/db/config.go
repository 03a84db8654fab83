package db

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFilePath = "config/config.yaml"
	envFilePath    = ".env"

	EnvMode       = "LIBRARY_MODE"
	EnvDBPassword = "LIBRARY_DB_PASSWORD"
	EnvJWTSecret  = "LIBRARY_JWT_SECRET"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Auth        AuthConfig     `yaml:"auth"`
}

// LoadConfig は yaml を読み込み、.env / 環境変数で秘密情報を上書きする。
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}

	// .env は任意（無ければ環境変数だけを見る）
	_ = godotenv.Load(envFilePath)
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode must be dev or release: %q", c.Mode)
	}
	if c.DB.Host == "" || c.DB.DBName == "" {
		return fmt.Errorf("database.host and database.dbname are required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or %s) is required", EnvJWTSecret)
	}
	return nil
}
