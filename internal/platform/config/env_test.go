package config

import "testing"

type testEnv struct {
	Addr  string `env:"PERSONAQUIZ_TEST_ADDR" envDefault:"localhost:8080"`
	Debug bool   `env:"PERSONAQUIZ_TEST_DEBUG" envDefault:"false"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	if cfg.Addr != "localhost:8080" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, "localhost:8080")
	}
	if cfg.Debug {
		t.Fatalf("Debug = true, want false")
	}
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv("PERSONAQUIZ_TEST_ADDR", "127.0.0.1:9000")
	t.Setenv("PERSONAQUIZ_TEST_DEBUG", "true")

	var cfg testEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, "127.0.0.1:9000")
	}
	if !cfg.Debug {
		t.Fatalf("Debug = false, want true")
	}
}
