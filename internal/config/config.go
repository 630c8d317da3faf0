// Load envs from .env
// Load YAML config
// Override with environment variables
// Provide default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

var webhookSecretPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

type Config struct {
	TelegramToken        string `yaml:"telegram_token" envconfig:"TELEGRAM_TOKEN"`
	TelegramReportChatID int64  `yaml:"telegram_report_chat_id" envconfig:"TELEGRAM_REPORT_CHAT_ID"`
	OwnerName            string `yaml:"owner_name" envconfig:"BOT_OWNER_NAME"`
	//Drive
	DriveCredentials  string `yaml:"drive_service_account_json" envconfig:"DRIVE_SERVICE_ACCOUNT_JSON"`
	DriveFolderID     string `yaml:"drive_folder_id" envconfig:"DRIVE_FOLDER_ID"`
	DrivePageSize     int    `yaml:"drive_page_size" envconfig:"DRIVE_PAGE_SIZE"`
	DriveMaxFileBytes int64  `yaml:"drive_max_file_bytes" envconfig:"DRIVE_MAX_FILE_BYTES"`
	//Mail
	GmailUser        string `yaml:"gmail_user" envconfig:"GMAIL_USER"`
	GmailAppPassword string `yaml:"gmail_app_password" envconfig:"GMAIL_APP_PASSWORD"`
	SMTPAddr         string `yaml:"smtp_addr" envconfig:"SMTP_ADDR"`
	SMTPSecurity     string `yaml:"smtp_security" envconfig:"SMTP_SECURITY"`
	MailFromName     string `yaml:"mail_from_name" envconfig:"MAIL_FROM_NAME"`
	//Cover letter signature
	SignatureName     string `yaml:"signature_name" envconfig:"SIGNATURE_NAME"`
	SignaturePhone    string `yaml:"signature_phone" envconfig:"SIGNATURE_PHONE"`
	SignatureLocation string `yaml:"signature_location" envconfig:"SIGNATURE_LOCATION"`
	//Runtime
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl" envconfig:"SESSION_IDLE_TTL"`
	NetworkTimeout time.Duration `yaml:"network_timeout" envconfig:"NETWORK_TIMEOUT"`
	//Webhook server
	Port        string `yaml:"port" envconfig:"PORT"`
	WebhookURL  string `yaml:"webhook_url" envconfig:"WEBHOOK_URL"`
	WebhookPath string `yaml:"webhook_path" envconfig:"WEBHOOK_PATH"`
	//sent by Telegram in X-Telegram-Bot-Api-Secret-Token on every webhook call
	WebhookSecret string `yaml:"webhook_secret" envconfig:"WEBHOOK_SECRET"`
}

// ConfigurationError reports a missing or invalid setting
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %s", e.Key, e.Reason)
}

// Load reads .env, the YAML file at CONFIG_PATH (configs/config.yaml by default)
// and the environment, in increasing priority. Only the Telegram token is checked,
// binaries call RequireDrive / RequireSMTP for the parts they use.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || os.Getenv("CONFIG_PATH") != "" {
			log.Printf("⚠️ Could not read %s: %v", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	//Override with env vars
	if err := envconfig.Process("", cfg); err != nil {
		return nil, &ConfigurationError{Key: "environment", Reason: err.Error()}
	}
	if cfg.TelegramToken == "" {
		cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.OwnerName == "" {
		c.OwnerName = "Usuario"
	}
	if c.DrivePageSize == 0 {
		c.DrivePageSize = 20
	}
	if c.DriveMaxFileBytes == 0 {
		c.DriveMaxFileBytes = 25 << 20
	}
	if c.SMTPAddr == "" {
		c.SMTPAddr = "smtp.gmail.com:465"
	}
	if c.SMTPSecurity == "" {
		c.SMTPSecurity = "ssl"
	}
	if c.SessionIdleTTL == 0 {
		c.SessionIdleTTL = 30 * time.Minute
	}
	if c.NetworkTimeout == 0 {
		c.NetworkTimeout = 30 * time.Second
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.WebhookPath == "" {
		c.WebhookPath = "/webhook/telegram"
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		c.WebhookPath = "/" + c.WebhookPath
	}
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return &ConfigurationError{Key: "TELEGRAM_TOKEN", Reason: "is required"}
	}
	if c.DrivePageSize < 1 || c.DrivePageSize > 1000 {
		return &ConfigurationError{Key: "DRIVE_PAGE_SIZE", Reason: "must be between 1 and 1000"}
	}
	if c.DriveMaxFileBytes < 0 {
		return &ConfigurationError{Key: "DRIVE_MAX_FILE_BYTES", Reason: "must be positive"}
	}
	switch c.SMTPSecurity {
	case "ssl", "starttls", "none":
	default:
		return &ConfigurationError{Key: "SMTP_SECURITY", Reason: fmt.Sprintf("must be ssl, starttls or none, got %q", c.SMTPSecurity)}
	}
	if c.SessionIdleTTL < 0 {
		return &ConfigurationError{Key: "SESSION_IDLE_TTL", Reason: "must be positive"}
	}
	if c.NetworkTimeout < 0 {
		return &ConfigurationError{Key: "NETWORK_TIMEOUT", Reason: "must be positive"}
	}
	if c.WebhookSecret != "" && !webhookSecretPattern.MatchString(c.WebhookSecret) {
		return &ConfigurationError{Key: "WEBHOOK_SECRET", Reason: "must be 1-256 characters of A-Z, a-z, 0-9, _ and -"}
	}
	return nil
}

// RequireWebhook checks the settings needed to receive updates over HTTP
func (c *Config) RequireWebhook() error {
	if c.WebhookSecret == "" {
		return &ConfigurationError{Key: "WEBHOOK_SECRET", Reason: "is required"}
	}
	return nil
}

// RequireDrive checks the settings needed to list and download CVs
func (c *Config) RequireDrive() error {
	if c.DriveCredentials == "" {
		return &ConfigurationError{Key: "DRIVE_SERVICE_ACCOUNT_JSON", Reason: "is required"}
	}
	if c.DriveFolderID == "" {
		return &ConfigurationError{Key: "DRIVE_FOLDER_ID", Reason: "is required"}
	}
	return nil
}

// RequireSMTP checks the settings needed to send mail
func (c *Config) RequireSMTP() error {
	if c.GmailUser == "" {
		return &ConfigurationError{Key: "GMAIL_USER", Reason: "is required"}
	}
	if c.GmailAppPassword == "" && c.SMTPSecurity != "none" {
		return &ConfigurationError{Key: "GMAIL_APP_PASSWORD", Reason: "is required"}
	}
	return nil
}

// MailFrom is the From header value, with MAIL_FROM_NAME as display name
func (c *Config) MailFrom() string {
	if c.MailFromName == "" {
		return c.GmailUser
	}
	addr := &mail.Address{Name: c.MailFromName, Address: c.GmailUser}
	return addr.String()
}
