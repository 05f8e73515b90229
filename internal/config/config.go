package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath   = "./dev.db"
	defaultPort     = "8080"
	defaultEnv      = "dev"
	defaultLLMModel = "gpt-4o"

	defaultRateInShop = 125.0
	defaultRateOnSite = 145.0
	defaultMarkup     = 15
)

// Timeouts bound each call to the text-completion service by stage.
type Timeouts struct {
	HTTP    time.Duration
	Extract time.Duration
	Photo   time.Duration
	Calc    time.Duration
	Labor   time.Duration
}

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	Env           string

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string
	LLMAzure    bool
	Timeouts    Timeouts

	RateInShop    float64
	RateOnSite    float64
	MarkupDefault int

	// SeededPricesFile is an optional JSON file of supplier prices loaded
	// into the database at startup.
	SeededPricesFile string

	// Warnings collects problems found while loading. The caller logs them
	// once a logger exists.
	Warnings []string
}

// IsDev reports whether the server runs in development mode, where
// migrations are applied on boot.
func (c Config) IsDev() bool {
	return c.Env == "" || strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development")
}

// LogMode is the logger mode matching Env.
func (c Config) LogMode() string {
	if c.IsDev() {
		return "dev"
	}
	return "prod"
}

// Load reads .env when present, then environment variables, and returns a
// populated Config. Variables already set in the environment win over .env.
func Load() Config {
	return load(".env")
}

func load(path string) Config {
	var warnings []string
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf("read %s: %v", path, err))
	}

	p := parser{}
	cfg := Config{
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        stringOr("DB_PATH", defaultDBPath),
		Port:          stringOr("PORT", defaultPort),
		Env:           stringOr("APP_ENV", defaultEnv),

		LLMEndpoint: os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		LLMModel:    stringOr("LLM_MODEL", defaultLLMModel),
		LLMAzure:    p.bool("LLM_AZURE", false),
		Timeouts: Timeouts{
			HTTP:    p.duration("LLM_HTTP_TIMEOUT", 90*time.Second),
			Extract: p.duration("LLM_EXTRACT_TIMEOUT", 30*time.Second),
			Photo:   p.duration("LLM_PHOTO_TIMEOUT", 45*time.Second),
			Calc:    p.duration("LLM_CALC_TIMEOUT", 60*time.Second),
			Labor:   p.duration("LLM_LABOR_TIMEOUT", 45*time.Second),
		},

		RateInShop:    p.float("RATE_INSHOP", defaultRateInShop),
		RateOnSite:    p.float("RATE_ONSITE", defaultRateOnSite),
		MarkupDefault: p.int("MARKUP_DEFAULT", defaultMarkup),

		SeededPricesFile: os.Getenv("SEEDED_PRICES_FILE"),
	}
	warnings = append(warnings, p.warnings...)

	if cfg.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set")
	}
	if cfg.LLMAPIKey == "" {
		warnings = append(warnings, "LLM_API_KEY is not set; every stage uses its rule-based fallback")
	}

	cfg.Warnings = warnings
	return cfg
}

func stringOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parser reads typed variables, keeping the default and recording a
// warning when a value does not parse.
type parser struct {
	warnings []string
}

func (p *parser) raw(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (p *parser) invalid(key, v string, def any) {
	p.warnings = append(p.warnings, fmt.Sprintf("%s=%q is invalid, using %v", key, v, def))
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		p.invalid(key, v, def)
		return def
	}
	return f
}

func (p *parser) int(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.invalid(key, v, def)
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.invalid(key, v, def)
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.invalid(key, v, def)
		return def
	}
	return d
}
