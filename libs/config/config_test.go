package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("PORT", "8083")
	p, err := Port("PORT", "1")
	if err != nil || p != "8083" {
		t.Fatalf("expected 8083, got %q (%v)", p, err)
	}

	t.Setenv("PORT", "99999")
	if _, err := Port("PORT", "1"); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestRequiredString(t *testing.T) {
	t.Setenv("SALON_REQUIRED", "")
	if _, err := RequiredString("SALON_REQUIRED"); err == nil {
		t.Fatal("expected error for empty value")
	}
	t.Setenv("SALON_REQUIRED", "x")
	if v, err := RequiredString("SALON_REQUIRED"); err != nil || v != "x" {
		t.Fatalf("unexpected %q %v", v, err)
	}
}

func TestIntBoolSecondsList(t *testing.T) {
	t.Setenv("SALON_INT", "42")
	t.Setenv("SALON_BAD_INT", "abc")
	t.Setenv("SALON_BOOL", "yes")
	t.Setenv("SALON_SECONDS", "3")
	t.Setenv("SALON_LIST", " a, ,b ,")

	if got := Int("SALON_INT", 1); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := Int("SALON_BAD_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	if !Bool("SALON_BOOL", false) {
		t.Fatal("expected true")
	}
	if Bool("SALON_UNSET_BOOL", false) {
		t.Fatal("expected fallback false")
	}
	if got := Seconds("SALON_SECONDS", time.Minute); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
	list := List("SALON_LIST", "")
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Fatalf("unexpected list %v", list)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SALON_DOTENV_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("SALON_DOTENV_VALUE", "")
	os.Unsetenv("SALON_DOTENV_VALUE")

	LoadDotEnv(path)
	if got := String("SALON_DOTENV_VALUE", ""); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}
