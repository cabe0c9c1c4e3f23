package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Razorpay RazorpayConfig
	SMTP     SMTPConfig
	Sheets   SheetsConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// defaultAllowedOrigins is the frontend allow-list used when
// CORS_ALLOWED_ORIGINS is not set.
var defaultAllowedOrigins = []string{
	"https://tedx-dyp-akurdi.vercel.app",
	"https://tedxdevv.netlify.app",
	"http://localhost:3000",
	"http://localhost:1234",
	"http://127.0.0.1:1234",
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
}

type BookingConfig struct {
	TotalLimit int
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	allowedOrigins := defaultAllowedOrigins
	if originsStr := os.Getenv("CORS_ALLOWED_ORIGINS"); originsStr != "" {
		allowedOrigins = nil
		for _, o := range strings.Split(originsStr, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}

	smtpPortStr := os.Getenv("SMTP_PORT")
	if smtpPortStr == "" {
		smtpPortStr = "587"
	}

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SMTP_PORT: %w", op, err)
	}

	smtpUser := os.Getenv("SMTP_USER")
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = smtpUser
	}

	totalLimit := 0
	if limitStr := os.Getenv("TICKET_LIMIT"); limitStr != "" {
		totalLimit, err = strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid TICKET_LIMIT: %w", op, err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Host:           serverHost,
			Port:           serverPort,
			AllowedOrigins: allowedOrigins,
		},
		Postgres: PostgresConfig{
			User:     postgresUser,
			Password: postgresPassword,
			Name:     postgresDB,
			Host:     postgresHost,
			Port:     postgresPort,
			SSLMode:  postgresSSLMode,
		},
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Razorpay: RazorpayConfig{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     smtpHost,
			Port:     smtpPort,
			Username: smtpUser,
			Password: os.Getenv("SMTP_PASS"),
			From:     smtpFrom,
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Booking: BookingConfig{
			TotalLimit: totalLimit,
		},
	}, nil
}

// MissingSecrets lists optional downstream credentials that are not set.
// The server still starts without them; the dependent operation fails at
// call time instead.
func (c *Config) MissingSecrets() []string {
	var missing []string

	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET")
	}
	if c.SMTP.Username == "" || c.SMTP.Password == "" {
		missing = append(missing, "SMTP_USER/SMTP_PASS")
	}
	if c.Sheets.SpreadsheetID == "" || c.Sheets.CredentialsFile == "" {
		missing = append(missing, "SHEETS_SPREADSHEET_ID/GOOGLE_APPLICATION_CREDENTIALS")
	}

	return missing
}
