package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := []byte(`
# comment

DB_PATH=./factory.db
export LOG_LEVEL=debug
APP_ENV="prod"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("DB_PATH"); got != "./factory.db" {
		t.Fatalf("DB_PATH=%q, want %q", got, "./factory.db")
	}
	if got := os.Getenv("LOG_LEVEL"); got != "debug" {
		t.Fatalf("LOG_LEVEL=%q, want %q", got, "debug")
	}
	if got := os.Getenv("APP_ENV"); got != "prod" {
		t.Fatalf("APP_ENV=%q, want %q", got, "prod")
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=8081\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("PORT"); got != "9090" {
		t.Fatalf("PORT=%q, want %q", got, "9090")
	}
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}

func TestParseDotEnv_QuotesCommentsAndDuplicates(t *testing.T) {
	values, err := parseDotEnv(strings.NewReader(`
Q='hello world'
H="keep # this"
C=plain # trailing
D=first
D=second
not a pair
=novalue
`))
	if err != nil {
		t.Fatalf("parseDotEnv: %v", err)
	}

	want := map[string]string{
		"Q": "hello world",
		"H": "keep # this",
		"C": "plain",
		"D": "second",
	}
	if len(values) != len(want) {
		t.Fatalf("got %d values %v, want %d", len(values), values, len(want))
	}
	for k, v := range want {
		if values[k] != v {
			t.Fatalf("%s=%q, want %q", k, values[k], v)
		}
	}
}
