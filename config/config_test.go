package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "LOG_LEVEL", "CORS_ORIGINS", "MONGODB_URI", "MONGODB_DATABASE", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "5000" || cfg.Addr() != ":5000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.IsDevelopment() {
		t.Error("default env should be production")
	}
	if !cfg.AllowAllOrigins() {
		t.Errorf("origins = %v, want wildcard", cfg.CORSOrigins)
	}
	if cfg.MongoURI != "" || cfg.MongoDatabase != "crash_game" {
		t.Errorf("mongo = %q/%q", cfg.MongoURI, cfg.MongoDatabase)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://play.example.com ,")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development")
	}
	if cfg.AllowAllOrigins() || len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://play.example.com" {
		t.Errorf("origins = %q", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeout)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PORT":             "http",
		"SHUTDOWN_TIMEOUT": "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%q accepted", key, val)
			}
		})
	}
}
