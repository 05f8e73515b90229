package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"ADMIN_EMAIL", "ADMIN_PASSWORD", "SESSION_SECRET", "DB_PATH", "PORT", "APP_ENV",
	"LLM_ENDPOINT", "LLM_API_KEY", "LLM_MODEL", "LLM_AZURE",
	"LLM_HTTP_TIMEOUT", "LLM_EXTRACT_TIMEOUT", "LLM_PHOTO_TIMEOUT", "LLM_CALC_TIMEOUT", "LLM_LABOR_TIMEOUT",
	"RATE_INSHOP", "RATE_ONSITE", "MARKUP_DEFAULT", "SEEDED_PRICES_FILE",
}

// clearEnv unsets every config variable for the test and restores them
// afterwards. godotenv never overrides a variable that is set, even empty.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		old, ok := os.LookupEnv(k)
		_ = os.Unsetenv(k)
		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(k, old)
				return
			}
			_ = os.Unsetenv(k)
		})
	}
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoad_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	clearEnv(t)
	path := writeDotEnv(t, `
# comment

ADMIN_EMAIL=owner@shop.com
export PORT=9090
SESSION_SECRET="s3cret"
LLM_API_KEY='key with spaces'
RATE_INSHOP=110
LLM_LABOR_TIMEOUT=20s
LLM_AZURE=true
`)

	cfg := load(path)

	if cfg.AdminEmail != "owner@shop.com" {
		t.Fatalf("AdminEmail=%q, want %q", cfg.AdminEmail, "owner@shop.com")
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "9090")
	}
	if cfg.SessionSecret != "s3cret" {
		t.Fatalf("SessionSecret=%q, want %q", cfg.SessionSecret, "s3cret")
	}
	if cfg.LLMAPIKey != "key with spaces" {
		t.Fatalf("LLMAPIKey=%q, want %q", cfg.LLMAPIKey, "key with spaces")
	}
	if cfg.RateInShop != 110 || cfg.RateOnSite != defaultRateOnSite {
		t.Fatalf("rates=%v/%v, want 110/%v", cfg.RateInShop, cfg.RateOnSite, defaultRateOnSite)
	}
	if cfg.Timeouts.Labor != 20*time.Second || cfg.Timeouts.Extract != 30*time.Second {
		t.Fatalf("timeouts=%+v", cfg.Timeouts)
	}
	if !cfg.LLMAzure {
		t.Fatalf("LLMAzure=false, want true")
	}
}

func TestLoad_DoesNotOverwriteExistingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	path := writeDotEnv(t, "PORT=9090\n")

	if got := load(path).Port; got != "7000" {
		t.Fatalf("Port=%q, want %q", got, "7000")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort {
		t.Fatalf("DBPath=%q Port=%q", cfg.DBPath, cfg.Port)
	}
	if cfg.MarkupDefault != defaultMarkup {
		t.Fatalf("MarkupDefault=%d, want %d", cfg.MarkupDefault, defaultMarkup)
	}
	if !cfg.IsDev() || cfg.LogMode() != "dev" {
		t.Fatalf("IsDev=%v LogMode=%q, want dev", cfg.IsDev(), cfg.LogMode())
	}
	for _, w := range cfg.Warnings {
		if strings.HasPrefix(w, "read ") {
			t.Fatalf("missing file produced warning %q", w)
		}
	}
	if !hasWarning(cfg.Warnings, "SESSION_SECRET") {
		t.Fatalf("warnings=%v, want SESSION_SECRET warning", cfg.Warnings)
	}
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	clearEnv(t)
	path := writeDotEnv(t, "MARKUP_DEFAULT=lots\nRATE_ONSITE=-5\nLLM_CALC_TIMEOUT=soon\nAPP_ENV=production\n")

	cfg := load(path)

	if cfg.MarkupDefault != defaultMarkup {
		t.Fatalf("MarkupDefault=%d, want %d", cfg.MarkupDefault, defaultMarkup)
	}
	if cfg.RateOnSite != defaultRateOnSite {
		t.Fatalf("RateOnSite=%v, want %v", cfg.RateOnSite, defaultRateOnSite)
	}
	if cfg.Timeouts.Calc != 60*time.Second {
		t.Fatalf("Calc timeout=%v, want 1m", cfg.Timeouts.Calc)
	}
	for _, key := range []string{"MARKUP_DEFAULT", "RATE_ONSITE", "LLM_CALC_TIMEOUT"} {
		if !hasWarning(cfg.Warnings, key) {
			t.Fatalf("warnings=%v, want one for %s", cfg.Warnings, key)
		}
	}
	if cfg.IsDev() || cfg.LogMode() != "prod" {
		t.Fatalf("IsDev=%v LogMode=%q, want prod", cfg.IsDev(), cfg.LogMode())
	}
}

func hasWarning(warnings []string, key string) bool {
	for _, w := range warnings {
		if strings.Contains(w, key) {
			return true
		}
	}
	return false
}
