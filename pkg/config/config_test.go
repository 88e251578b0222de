package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Addr    string        `split_words:"true" default:":8080"`
	Timeout time.Duration `split_words:"true" default:"5s"`
	Names   []string      `split_words:"true"`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestNewReadsEnvFile(t *testing.T) {
	path := writeEnvFile(t, "CFGTEST_ADDR=:9090\nCFGTEST_TIMEOUT=2s\n")
	unsetAfter(t, "CFGTEST_ADDR", "CFGTEST_TIMEOUT")

	SetEnvFile(path)
	t.Cleanup(func() { SetEnvFile("") })

	conf, err := New[testConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Addr != ":9090" || conf.Timeout != 2*time.Second {
		t.Fatalf("unexpected config: %+v", conf)
	}
}

func TestNewEnvironmentWinsOverFile(t *testing.T) {
	path := writeEnvFile(t, "CFGWIN_ADDR=:9090\n")
	t.Setenv("CFGWIN_ADDR", ":7070")
	t.Setenv("CFGWIN_NAMES", "a,b")

	SetEnvFile(path)
	t.Cleanup(func() { SetEnvFile("") })

	conf, err := New[testConfig]("CFGWIN")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Addr != ":7070" {
		t.Fatalf("Addr = %q, want environment value", conf.Addr)
	}
	if len(conf.Names) != 2 || conf.Names[1] != "b" {
		t.Fatalf("Names = %v", conf.Names)
	}
}

func TestNewDefaultsWithoutFile(t *testing.T) {
	SetEnvFile("")

	conf, err := New[testConfig]("CFGDEFAULT")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Addr != ":8080" || conf.Timeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", conf)
	}
}

func TestNewMissingFileFails(t *testing.T) {
	SetEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	t.Cleanup(func() { SetEnvFile("") })

	if _, err := New[testConfig]("CFGMISSING"); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
