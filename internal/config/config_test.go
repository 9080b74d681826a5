package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Fatalf("backend = %q", cfg.DataBackend)
	}
	if !cfg.DonationSyncEnabled {
		t.Fatal("donation sync disabled by default")
	}
	if cfg.ImportChunkSize != 100 {
		t.Fatalf("chunk size = %d", cfg.ImportChunkSize)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DONATION_SYNC_ENABLED", "false")
	t.Setenv("STORAGE_QUOTA_BYTES", "1024")

	cfg := Load()
	if cfg.Port != "9000" || cfg.DataBackend != "memory" {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if cfg.DonationSyncEnabled {
		t.Fatal("donation sync override ignored")
	}
	if cfg.QuotaBytes != 1024 {
		t.Fatalf("quota = %d", cfg.QuotaBytes)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Port:            "8081",
		DataBackend:     "memory",
		ImportChunkSize: 100,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []Config{
		{Port: "abc", DataBackend: "memory", ImportChunkSize: 100},
		{Port: "0", DataBackend: "memory", ImportChunkSize: 100},
		{Port: "8081", DataBackend: "redis", ImportChunkSize: 100},
		{Port: "8081", DataBackend: "sqlite", SQLiteDBPath: "", ImportChunkSize: 100},
		{Port: "8081", DataBackend: "memory", ImportChunkSize: 0},
		{Port: "8081", DataBackend: "memory", ImportChunkSize: 100, QuotaBytes: -1},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: invalid config accepted: %+v", i, c)
		}
	}
}

func TestValidateCreatesSQLiteDir(t *testing.T) {
	c := &Config{
		Port:            "8081",
		DataBackend:     "sqlite",
		SQLiteDBPath:    filepath.Join(t.TempDir(), "nested", "kakeibo.db"),
		ImportChunkSize: 100,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
