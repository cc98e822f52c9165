package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"COUCHDB_URL", "COUCHDB_USER", "COUCHDB_PASSWORD",
		"SPICENET_MONGODB_URL", "SPICENET_DB", "SPICENET_REDIS_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := LoadConfig()
	if cfg.CouchURL != "http://localhost:5984" {
		t.Errorf("CouchURL = %q", cfg.CouchURL)
	}
	if cfg.Database != "schematics" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.MongoURL != "" || cfg.RedisURL != "" {
		t.Errorf("unexpected backends: %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearStoreEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "couchdb_url = \"http://couch.example:5984\"\n" +
		"couchdb_user = \"admin\"\n" +
		"database = \"designs\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig()
	if cfg.CouchURL != "http://couch.example:5984" {
		t.Errorf("CouchURL = %q", cfg.CouchURL)
	}
	if cfg.CouchUser != "admin" {
		t.Errorf("CouchUser = %q", cfg.CouchUser)
	}
	if cfg.Database != "designs" {
		t.Errorf("Database = %q", cfg.Database)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearStoreEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("database = \"from_file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SPICENET_DB", "from_env")
	t.Setenv("COUCHDB_URL", "http://env.example:5984")

	cfg := LoadConfig()
	if cfg.Database != "from_env" {
		t.Errorf("Database = %q, want env override", cfg.Database)
	}
	if cfg.CouchURL != "http://env.example:5984" {
		t.Errorf("CouchURL = %q, want env override", cfg.CouchURL)
	}
}

func TestLoadConfigBrokenFileKeepsDefaults(t *testing.T) {
	clearStoreEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("couchdb_url = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig()
	if cfg.CouchURL != "http://localhost:5984" {
		t.Errorf("CouchURL = %q, want default after broken config", cfg.CouchURL)
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/custom/config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestOpenStoreRequiresBackend(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.OpenStore(context.Background()); err == nil {
		t.Fatal("expected error for empty config")
	}
}
