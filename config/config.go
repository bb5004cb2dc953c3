package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the auth service
type Config struct {
	Service ServiceConfig
	Logging LoggingConfig
	QRLogin QRLoginConfig
	Ticket  TicketConfig
	Kafka   KafkaConfig
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name            string
	Port            string
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// QRLoginConfig holds QR login handshake configuration
type QRLoginConfig struct {
	// BaseURL is the externally reachable URL of the clinic dashboard,
	// used to build the URL embedded in the QR code.
	BaseURL string

	// SessionTTL is the absolute validity window of one login attempt.
	// Reaching the authorized state does not extend it.
	SessionTTL time.Duration

	// SweepInterval controls how often expired sessions are swept.
	SweepInterval time.Duration

	// GracePeriod is how long terminal sessions are kept after their
	// deadline before the sweeper frees them.
	GracePeriod time.Duration

	// MaxSessions caps concurrent login attempts held in memory.
	MaxSessions int

	// MaxVerifierAttempts locks a session after this many wrong
	// verifier codes. Zero disables the lockout.
	MaxVerifierAttempts int
}

// TicketConfig holds login ticket signing configuration
type TicketConfig struct {
	Secret string
	TTL    time.Duration
}

// KafkaConfig holds the optional lifecycle event mirror configuration.
// Leave brokers empty to disable mirroring entirely.
type KafkaConfig struct {
	Brokers     []string
	TopicEvents string
}

// Enabled reports whether event mirroring is configured
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config        *Config
	ServiceConfig *ServiceConfig
	LoggingConfig *LoggingConfig
	QRLoginConfig *QRLoginConfig
	TicketConfig  *TicketConfig
	KafkaConfig   *KafkaConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:        cfg,
		ServiceConfig: &cfg.Service,
		LoggingConfig: &cfg.Logging,
		QRLoginConfig: &cfg.QRLogin,
		TicketConfig:  &cfg.Ticket,
		KafkaConfig:   &cfg.Kafka,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	shutdownTimeout, err := time.ParseDuration(getEnv("SERVICE_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_SHUTDOWN_TIMEOUT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("QRLOGIN_SESSION_TTL", "3m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QRLOGIN_SESSION_TTL: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("QRLOGIN_SWEEP_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QRLOGIN_SWEEP_INTERVAL: %w", err)
	}

	gracePeriod, err := time.ParseDuration(getEnv("QRLOGIN_GRACE_PERIOD", "3m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QRLOGIN_GRACE_PERIOD: %w", err)
	}

	maxSessions, err := strconv.Atoi(getEnv("QRLOGIN_MAX_SESSIONS", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid QRLOGIN_MAX_SESSIONS: %w", err)
	}

	maxAttempts, err := strconv.Atoi(getEnv("QRLOGIN_MAX_VERIFIER_ATTEMPTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid QRLOGIN_MAX_VERIFIER_ATTEMPTS: %w", err)
	}

	ticketTTL, err := time.ParseDuration(getEnv("TICKET_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICKET_TTL: %w", err)
	}

	brokers := []string{}
	brokersStr := getEnv("KAFKA_BROKERS", "")
	if brokersStr != "" {
		brokers = strings.Split(brokersStr, ",")
	}

	cfg := &Config{
		Service: ServiceConfig{
			Name:            getEnv("SERVICE_NAME", "auth-service"),
			Port:            getEnv("SERVICE_PORT", "8086"),
			ShutdownTimeout: shutdownTimeout,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		QRLogin: QRLoginConfig{
			BaseURL:             getEnv("QRLOGIN_BASE_URL", "http://localhost:8086"),
			SessionTTL:          sessionTTL,
			SweepInterval:       sweepInterval,
			GracePeriod:         gracePeriod,
			MaxSessions:         maxSessions,
			MaxVerifierAttempts: maxAttempts,
		},
		Ticket: TicketConfig{
			Secret: getEnv("TICKET_SECRET", "change-me-in-production"),
			TTL:    ticketTTL,
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			TopicEvents: getEnv("KAFKA_TOPIC_AUTH_EVENTS", "auth.qrlogin.events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := url.Parse(c.QRLogin.BaseURL); err != nil {
		return fmt.Errorf("invalid QRLOGIN_BASE_URL: %w", err)
	}

	if c.QRLogin.SessionTTL <= 0 {
		return fmt.Errorf("QRLOGIN_SESSION_TTL must be positive")
	}

	if c.QRLogin.MaxSessions <= 0 {
		return fmt.Errorf("QRLOGIN_MAX_SESSIONS must be positive")
	}

	if c.Ticket.Secret == "" {
		return fmt.Errorf("TICKET_SECRET is required")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
