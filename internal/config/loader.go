package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the
// booking service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	// SessionSecret keys the HMAC digest under which session tokens are
	// stored. Rotating it invalidates every live session.
	SessionSecret string
	SessionTTL    time.Duration
	Timezone      *time.Location
	AMQPURL       string
	AuditInterval time.Duration

	// AdminEmail and AdminPassword seed the first administrator account
	// on startup. Both must be set together; leaving them empty skips
	// the seed.
	AdminEmail    string
	AdminPassword string
}

// Load parses configuration values from the current process environment.
// A .env file in the working directory is merged in first, without
// overriding variables already set.
//
// The loader applies sensible defaults for optional fields while
// validating required values and reporting localized error messages for
// missing entries.
func Load() (Config, error) {
	// Ignore the error: a missing .env file is the common case.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:booking.db?_foreign_keys=on",
		SessionTTL: 24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("BOOKING_SESSION_SECRET")); secret == "" {
		missing = append(missing, "BOOKING_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	zone := strings.TrimSpace(os.Getenv("BOOKING_TIMEZONE"))
	if zone == "" {
		zone = "America/Sao_Paulo"
	}
	location, err := time.LoadLocation(zone)
	if err != nil {
		invalid = append(invalid, "BOOKING_TIMEZONE")
	} else {
		cfg.Timezone = location
	}

	cfg.AMQPURL = strings.TrimSpace(os.Getenv("BOOKING_AMQP_URL"))

	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(os.Getenv("BOOKING_ADMIN_EMAIL")))
	cfg.AdminPassword = os.Getenv("BOOKING_ADMIN_PASSWORD")
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		invalid = append(invalid, "BOOKING_ADMIN_EMAIL/BOOKING_ADMIN_PASSWORD")
	}

	if intervalValue := strings.TrimSpace(os.Getenv("BOOKING_AUDIT_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "BOOKING_AUDIT_INTERVAL")
		} else {
			cfg.AuditInterval = interval
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente obrigatórias ausentes: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente com valores inválidos: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
