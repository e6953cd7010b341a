package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	CatalogSourceFile  = "file"
	CatalogSourceMySQL = "mysql"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	// Redis is optional. An empty addr keeps carts in process memory.
	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	// Rabbit is optional. With a url set, cart changes are published.
	Rabbit struct {
		URL        string `koanf:"url"`
		Exchange   string `koanf:"exchange"`
		RoutingKey string `koanf:"routing_key"`
	} `koanf:"rabbitmq"`

	Cart struct {
		KeyPrefix   string        `koanf:"key_prefix"`
		TTL         time.Duration `koanf:"ttl"`
		MaxSessions int           `koanf:"max_sessions"` // stores kept in memory
	} `koanf:"cart"`

	Catalog struct {
		Source string `koanf:"source"` // file | mysql
		Path   string `koanf:"path"`
	} `koanf:"catalog"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Store struct {
		Name              string `koanf:"name"`
		Currency          string `koanf:"currency"`
		DeliveryThreshold int64  `koanf:"delivery_threshold"`
		ChatContact       string `koanf:"chat_contact"`
		EmailTo           string `koanf:"email_to"`
		EmailSubject      string `koanf:"email_subject"`
	} `koanf:"store"`
}

const envPrefix = "STOREFRONT_"

// envKey maps STOREFRONT_STORE__DELIVERY_THRESHOLD to store.delivery_threshold.
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
}

// Load layers base.yaml, then <envName>.yaml when present, then STOREFRONT_
// variables, and validates the result.
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(filepath.Join(pathDir, "base.yaml")), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	if envName != "" {
		overlay := filepath.Join(pathDir, envName+".yaml")
		if _, err := os.Stat(overlay); err == nil {
			if err := k.Load(file.Provider(overlay), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envName, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.App.HTTPAddr == "":
		return errors.New("app.http_addr required")
	case c.Store.DeliveryThreshold < 0:
		return errors.New("store.delivery_threshold must not be negative")
	case c.Store.ChatContact == "":
		return errors.New("store.chat_contact required")
	case c.Store.EmailTo == "":
		return errors.New("store.email_to required")
	case c.Cart.MaxSessions < 0:
		return errors.New("cart.max_sessions must not be negative")
	}

	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return errors.New("catalog.path required for file source")
		}
	case CatalogSourceMySQL:
		if c.MySQL.DSN == "" {
			return errors.New("mysql.dsn required for mysql catalog source")
		}
	default:
		return fmt.Errorf("catalog.source %q not supported", c.Catalog.Source)
	}
	return nil
}
