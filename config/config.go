package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type Config struct {
	Port string

	Line   Line
	Google Google
	Speech Speech
	Redis  Redis
	Kafka  Kafka
	SMTP   SMTP
}

type Line struct {
	ChannelAccessToken string
}

type Google struct {
	SheetID       string
	ClientEmail   string
	PrivateKey    string
	DriveFolderID string
}

type Speech struct {
	APIKey string
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
	TMPLDir  string
}

// Load reads the whole configuration from the environment. Only the
// listen port is mandatory: missing ledger, speech or messaging
// credentials leave those features non-functional but the process still
// starts (each absence is logged as a warning).
func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		Line: Line{
			ChannelAccessToken: getEnvOptional("LINE_CHANNEL_ACCESS_TOKEN", log),
		},
		Google: Google{
			SheetID:       getEnvOptional("GOOGLE_SHEET_ID", log),
			ClientEmail:   getEnvOptional("GOOGLE_CLIENT_EMAIL", log),
			PrivateKey:    normalizeKey(getEnvOptional("GOOGLE_PRIVATE_KEY", log)),
			DriveFolderID: os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		},
		Speech: Speech{
			APIKey: getEnvOptional("SPEECH_API_KEY", log),
		},
		Redis: Redis{
			Enabled:    os.Getenv("REDIS_ENABLED") == "true",
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("DEDUPE_TTL_SECONDS"), 3600),
		},
		Kafka: Kafka{
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   os.Getenv("KAFKA_TOPIC_ORDERS"),
			GroupID: os.Getenv("KAFKA_GROUP_ID"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     atoiDefault(os.Getenv("SMTP_PORT"), 465),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			To:       os.Getenv("ALERT_EMAIL_TO"),
			TMPLDir:  getEnvDefault("TMPL_DIR", "templates"),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvOptional(key string, log *zap.Logger) string {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		log.Warn("environment variable is not set, dependent feature is degraded", zap.String("key", key))
		return ""
	}
	return val
}

func getEnvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// Keys pasted into env files usually carry literal \n instead of
// newlines.
func normalizeKey(k string) string {
	return strings.ReplaceAll(k, `\n`, "\n")
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		if pt := strings.TrimSpace(p); pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
