package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/store"
)

// Config selects the document store and cache backends. Values are read from
// ~/.config/spicenet/config.toml and overridden by environment variables, so
// a deployment can be pointed at another database without editing files.
type Config struct {
	// CouchURL is the CouchDB server URL, e.g. http://localhost:5984.
	CouchURL      string `toml:"couchdb_url"`
	CouchUser     string `toml:"couchdb_user"`
	CouchPassword string `toml:"couchdb_password"`

	// MongoURL switches the store to MongoDB when set.
	MongoURL string `toml:"mongodb_url"`

	// Database is the CouchDB database or MongoDB collection name.
	Database string `toml:"database"`

	// RedisURL switches the pipeline cache to Redis when set.
	RedisURL string `toml:"redis_url"`
}

// defaultDatabase is the schematic database used when nothing is configured.
const defaultDatabase = "schematics"

// LoadConfig reads the config file and applies environment overrides.
// A missing or unreadable config file yields the defaults.
func LoadConfig() *Config {
	cfg := &Config{
		CouchURL: "http://localhost:5984",
		Database: defaultDatabase,
	}

	if path, err := configPath(); err == nil {
		// Decode errors leave the defaults in place on purpose: a broken
		// config file should not take the CLI down.
		_, _ = toml.DecodeFile(path, cfg)
	}

	applyEnv(&cfg.CouchURL, "COUCHDB_URL")
	applyEnv(&cfg.CouchUser, "COUCHDB_USER")
	applyEnv(&cfg.CouchPassword, "COUCHDB_PASSWORD")
	applyEnv(&cfg.MongoURL, "SPICENET_MONGODB_URL")
	applyEnv(&cfg.Database, "SPICENET_DB")
	applyEnv(&cfg.RedisURL, "SPICENET_REDIS_URL")

	return cfg
}

// OpenStore connects to the configured backend: MongoDB when mongodb_url is
// set, CouchDB otherwise.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	if c.MongoURL != "" {
		return store.NewMongo(ctx, c.MongoURL, c.Database, "documents")
	}
	if c.CouchURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no store configured: set couchdb_url or mongodb_url")
	}
	return store.NewCouch(c.CouchURL+"/"+c.Database, c.CouchUser, c.CouchPassword)
}

// configPath returns the config file location using XDG standard
// (~/.config/spicenet/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
