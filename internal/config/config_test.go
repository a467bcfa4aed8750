package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:                "8081",
		ShutdownTimeout:     10 * time.Second,
		DataBackend:         BackendFile,
		DataDir:             "./data",
		SQLiteDBPath:        "./data/invoicer.db",
		ExportDir:           "./exports",
		PDFExportWorkers:    4,
		LogLevel:            "info",
		DefaultCurrency:     "USD",
		DefaultTaxRate:      8.25,
		DefaultPaymentTerms: "Net 30",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid file backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) { c.DataBackend = BackendSQLite },
			wantErr: false,
		},
		{
			name:    "valid memory backend with GBP",
			mutate:  func(c *Config) { c.DataBackend = BackendMemory; c.DefaultCurrency = "GBP" },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [file sqlite memory]",
		},
		{
			name:        "file backend missing data dir",
			mutate:      func(c *Config) { c.DataDir = "" },
			wantErr:     true,
			errorString: "data directory cannot be empty",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.DataBackend = BackendSQLite; c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "unsupported currency",
			mutate:      func(c *Config) { c.DefaultCurrency = "EUR" },
			wantErr:     true,
			errorString: "invalid default currency 'EUR'",
		},
		{
			name:        "negative tax rate",
			mutate:      func(c *Config) { c.DefaultTaxRate = -1 },
			wantErr:     true,
			errorString: "invalid default tax rate -1",
		},
		{
			name:        "zero workers",
			mutate:      func(c *Config) { c.PDFExportWorkers = 0 },
			wantErr:     true,
			errorString: "invalid PDF export workers 0",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "short shutdown timeout",
			mutate:      func(c *Config) { c.ShutdownTimeout = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && tt.errorString != "" {
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err, tt.errorString)
				}
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.DefaultCurrency = "JPY"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), "\n- ") != 2 {
		t.Errorf("expected two aggregated problems, got %q", err.Error())
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "DATA_BACKEND", "DATA_DIR", "SQLITE_DB_PATH", "EXPORT_DIR", "LOG_LEVEL",
		"DEFAULT_CURRENCY", "DEFAULT_TAX_RATE", "DEFAULT_PAYMENT_TERMS", "PDF_EXPORT_WORKERS", "SHUTDOWN_TIMEOUT",
	}
	clean := func(t *testing.T) {
		for _, k := range keys {
			t.Setenv(k, "")
		}
	}

	t.Run("default values", func(t *testing.T) {
		clean(t)
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != BackendFile {
			t.Errorf("Load() DataBackend = %v, want file", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "data/invoicer.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want data/invoicer.db", cfg.SQLiteDBPath)
		}
		if cfg.DefaultCurrency != "USD" || cfg.DefaultTaxRate != 8.25 || cfg.DefaultPaymentTerms != "Net 30" {
			t.Errorf("Load() invoice defaults = %v %v %v", cfg.DefaultCurrency, cfg.DefaultTaxRate, cfg.DefaultPaymentTerms)
		}
		if cfg.PDFExportWorkers != 4 || cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("Load() workers/timeout = %v %v", cfg.PDFExportWorkers, cfg.ShutdownTimeout)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		clean(t)
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "sqlite")
		t.Setenv("DATA_DIR", "/var/lib/invoicer")
		t.Setenv("DEFAULT_CURRENCY", "gbp")
		t.Setenv("DEFAULT_TAX_RATE", "20")
		t.Setenv("SHUTDOWN_TIMEOUT", "45s")

		cfg := Load()

		if cfg.Port != "9090" || cfg.DataBackend != "sqlite" {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.SQLiteDBPath != "/var/lib/invoicer/invoicer.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want it under DATA_DIR", cfg.SQLiteDBPath)
		}
		if cfg.DefaultCurrency != "GBP" || cfg.DefaultTaxRate != 20 {
			t.Errorf("Load() currency/tax = %v %v", cfg.DefaultCurrency, cfg.DefaultTaxRate)
		}
		if cfg.ShutdownTimeout != 45*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 45s", cfg.ShutdownTimeout)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		clean(t)
		t.Setenv("PDF_EXPORT_WORKERS", "invalid")
		t.Setenv("DEFAULT_TAX_RATE", "lots")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")

		cfg := Load()

		if cfg.PDFExportWorkers != 4 {
			t.Errorf("Load() PDFExportWorkers = %v, want 4 (default for invalid input)", cfg.PDFExportWorkers)
		}
		if cfg.DefaultTaxRate != 8.25 {
			t.Errorf("Load() DefaultTaxRate = %v, want 8.25", cfg.DefaultTaxRate)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
		}
	})
}
