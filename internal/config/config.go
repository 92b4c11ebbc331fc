package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config application configuration. Loaded once at startup from YAML and
// then overridden from environment variables.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	NATS         NATSConfig         `yaml:"nats"`
	Payments     PaymentsConfig     `yaml:"payments"`
	Verification VerificationConfig `yaml:"verification"`
	CORS         CORSConfig         `yaml:"cors"`
}

// ServerConfig HTTP server bind configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database connection
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig JWT settings
type AuthConfig struct {
	JWTSecret     string `yaml:"jwtSecret"`
	TokenTTLHours int    `yaml:"tokenTtlHours"`
}

// NATSConfig event bus settings; publishing is optional and disabled when
// the URL is empty.
type NATSConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"`
	ReconnectWait int    `yaml:"reconnect_wait"`
	MaxReconnects int    `yaml:"max_reconnects"`
}

// PaymentsConfig external payment processor plus both fee schedules.
// The two schedules are distinct named policies; the pipeline records which
// one priced a given transaction.
type PaymentsConfig struct {
	ProcessorBaseURL string    `yaml:"processorBaseUrl"`
	ProcessorAPIKey  string    `yaml:"processorApiKey"`
	TimeoutSeconds   int       `yaml:"timeoutSeconds"`
	TaskTypeFees     FeeRates  `yaml:"taskTypeFees"`
	TierFees         TierRates `yaml:"tierFees"`
}

// FeeRates task-type fee schedule, percentages
type FeeRates struct {
	PlatformFunded     float64 `yaml:"platformFunded"`
	PeerToPeer         float64 `yaml:"peerToPeer"`
	CorporateSponsored float64 `yaml:"corporateSponsored"`
	Default            float64 `yaml:"default"`
}

// TierRates subscription-tier fee schedule, percentages
type TierRates struct {
	Free    float64 `yaml:"free"`
	Pro     float64 `yaml:"pro"`
	Premium float64 `yaml:"premium"`
}

// VerificationConfig decision-engine thresholds. These are policy knobs:
// operators tune them without code changes.
type VerificationConfig struct {
	GPSAccuracyMin        int     `yaml:"gpsAccuracyMin"`
	PhotoQualityMin       int     `yaml:"photoQualityMin"`
	TimeComplianceMin     int     `yaml:"timeComplianceMin"`
	FraudAutoApproveMax   int     `yaml:"fraudAutoApproveMax"`
	FraudRejectAbove      int     `yaml:"fraudRejectAbove"`
	PlatformFundedAutoCap float64 `yaml:"platformFundedAutoCap"`
	PeerToPeerReviewAbove float64 `yaml:"peerToPeerReviewAbove"`
	CorporateReviewAbove  float64 `yaml:"corporateReviewAbove"`
	CorporateQualityFloor int     `yaml:"corporateQualityFloor"`
}

var AppConfig *Config

// Defaults returns a config populated with the built-in policy defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Auth:   AuthConfig{TokenTTLHours: 72},
		NATS:   NATSConfig{Timeout: 5, ReconnectWait: 2, MaxReconnects: 10},
		Payments: PaymentsConfig{
			TimeoutSeconds: 15,
			TaskTypeFees: FeeRates{
				PlatformFunded:     0,
				PeerToPeer:         7,
				CorporateSponsored: 15,
				Default:            7,
			},
			TierFees: TierRates{Free: 10, Pro: 7, Premium: 5},
		},
		Verification: VerificationConfig{
			GPSAccuracyMin:        70,
			PhotoQualityMin:       70,
			TimeComplianceMin:     80,
			FraudAutoApproveMax:   20,
			FraudRejectAbove:      50,
			PlatformFundedAutoCap: 25,
			PeerToPeerReviewAbove: 50,
			CorporateReviewAbove:  100,
			CorporateQualityFloor: 80,
		},
	}
}

// LoadConfig loads the configuration file, applies defaults for unset policy
// fields, and finally applies environment overrides. An empty path falls back
// to config.yaml, preferring config.local.yaml when present.
func LoadConfig(configPath string) (*Config, error) {
	config := Defaults()

	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
		}
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	overrideFromEnv(config)

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret (or JWT_SECRET) is required")
	}

	AppConfig = config
	return config, nil
}

func overrideFromEnv(config *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}
	if baseURL := os.Getenv("PAYMENT_PROCESSOR_BASE_URL"); baseURL != "" {
		config.Payments.ProcessorBaseURL = baseURL
	}
	if apiKey := os.Getenv("PAYMENT_PROCESSOR_API_KEY"); apiKey != "" {
		config.Payments.ProcessorAPIKey = apiKey
	}
	if timeout := os.Getenv("PAYMENT_PROCESSOR_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Payments.TimeoutSeconds = t
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORS.AllowedOrigins = splitAndTrim(origins)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CORSConfig CORS settings
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}
