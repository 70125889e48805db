package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/arko-chat/storebridge/internal/credentials"
	"github.com/arko-chat/storebridge/internal/service"
)

const (
	appName       = "storebridge"
	configFile    = "config.json"
	linkSecretKey = "link_secret"
)

// Duration is a time.Duration written as a Go duration string in JSON.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Sandbox struct {
	CatalogPath          string   `json:"catalog_path"`
	ConsoleApplicationID string   `json:"console_application_id"`
	PaymentTimeout       Duration `json:"payment_timeout"`
	ReviewCooldown       Duration `json:"review_cooldown"`
}

type Config struct {
	DataDir    string          `json:"data_dir"`
	ListenAddr string          `json:"listen_addr"`
	LogLevel   string          `json:"log_level"`
	LogFormat  string          `json:"log_format"`
	Sandbox    Sandbox         `json:"sandbox"`
	Bridge     service.Options `json:"bridge"`
	LinkSecret string          `json:"-"`

	// Path is where the config was read from.
	Path string `json:"-"`
}

func defaults(appDir string) Config {
	return Config{
		DataDir:    filepath.Join(appDir, "sandbox"),
		ListenAddr: "127.0.0.1:0",
		LogLevel:   "info",
		LogFormat:  "text",
		Sandbox: Sandbox{
			PaymentTimeout: Duration(10 * time.Minute),
			ReviewCooldown: Duration(time.Hour),
		},
	}
}

// Load reads config.json from the user config directory, writing one with
// defaults on first run, then applies environment overrides (including a
// .env file in the working directory) and loads the link secret from the
// keyring.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	appDir := filepath.Join(configDir, appName)
	path := filepath.Join(appDir, configFile)

	cfg := defaults(appDir)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(appDir, 0700); err != nil {
			return nil, err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(path, out, 0600); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	default:
		return nil, err
	}
	cfg.Path = path

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnvOverrides(&cfg)

	if cfg.LinkSecret == "" {
		cfg.LinkSecret, err = loadLinkSecret()
		if err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func loadLinkSecret() (string, error) {
	secret, err := credentials.LoadAppSecret(linkSecretKey)
	if err == nil {
		return secret, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret = base64.StdEncoding.EncodeToString(raw)
	if err := credentials.StoreAppSecret(linkSecretKey, secret); err != nil {
		return "", fmt.Errorf("store link secret: %w", err)
	}
	return secret, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOREBRIDGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("STOREBRIDGE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("STOREBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STOREBRIDGE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("STOREBRIDGE_CATALOG"); v != "" {
		cfg.Sandbox.CatalogPath = v
	}
	if v := os.Getenv("STOREBRIDGE_LINK_SECRET"); v != "" {
		cfg.LinkSecret = v
	}
}
