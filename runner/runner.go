package runner

import (
	"context"
	"flag"
	"os"
	"strings"
)

// Runner is anything the process can run as its main loop.
type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

// Config holds the process configuration. Flags win over environment
// variables; secrets are env-only.
type Config struct {
	Addr            string
	Dsn             string
	Debug           bool
	SkipMigrations  bool
	AllowedOrigins  []string
	ClerkAPIKey     string
	StripeSecretKey string
	WebhookSecret   string
}

// ParseConfig parses flags and environment into a Config.
func ParseConfig() *Config {
	cfg := Config{}

	var origins string

	flag.StringVar(&cfg.Addr, "addr", ":8080", "address to listen on")
	flag.StringVar(&cfg.Dsn, "dsn", "", "database connection string")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	flag.BoolVar(&cfg.SkipMigrations, "skip-migrations", false, "do not run schema migrations on startup")
	flag.StringVar(&origins, "allowed-origins", "", "comma separated list of allowed CORS origins")

	flag.Parse()

	if cfg.Dsn == "" {
		cfg.Dsn = os.Getenv("DATABASE_URL")
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}

	if origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	cfg.ClerkAPIKey = os.Getenv("CLERK_API_KEY")
	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")

	return &cfg
}
