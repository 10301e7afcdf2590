package bootstrap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetupReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SESSION_SECRET=s3cret\nSERVER_PORT=9090\nSESSION_VALIDITY=2h\nLOCAL_CORS=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Setup(path)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Fatalf("SessionSecret=%q", cfg.SessionSecret)
	}
	if cfg.ServerPort != "9090" {
		t.Fatalf("ServerPort=%q, want 9090", cfg.ServerPort)
	}
	if cfg.SessionValidity != 2*time.Hour {
		t.Fatalf("SessionValidity=%v, want 2h", cfg.SessionValidity)
	}
	if !cfg.IsLocalCors {
		t.Fatalf("expected LOCAL_CORS=true")
	}
	if cfg.WatcherInterval != time.Minute {
		t.Fatalf("WatcherInterval=%v, want default 1m", cfg.WatcherInterval)
	}
	if cfg.ProfileCollection != "users" {
		t.Fatalf("ProfileCollection=%q, want users", cfg.ProfileCollection)
	}
}

func TestSetupFallsBackToEnvironment(t *testing.T) {
	t.Setenv("SESSION_SECRET", "from-env")

	cfg, err := Setup(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cfg.SessionSecret != "from-env" {
		t.Fatalf("SessionSecret=%q, want from-env", cfg.SessionSecret)
	}
	if cfg.SessionValidity != 24*time.Hour {
		t.Fatalf("SessionValidity=%v, want 24h", cfg.SessionValidity)
	}
}

func TestSetupRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Setup("")
	if !errors.Is(err, ErrNoSessionSecret) {
		t.Fatalf("err=%v, want ErrNoSessionSecret", err)
	}
}

func TestLoadDoesNotRequireSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("MONGO_DATABASE", "cli_db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MongoDatabase != "cli_db" {
		t.Fatalf("MongoDatabase=%q, want cli_db", cfg.MongoDatabase)
	}
}
