package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"` // development, production
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		Currency      string `yaml:"currency"`
		// nil - не задано, по умолчанию true
		RequireSignedWebhooks *bool  `yaml:"require_signed_webhooks"`
		APIBaseURL            string `yaml:"api_base_url"` // подмена для stripe-mock / тестов
		ReconcileConcurrency  int    `yaml:"reconcile_concurrency"`
	} `yaml:"stripe"`

	Session struct {
		Secret          string `yaml:"secret"`
		CookieName      string `yaml:"cookie_name"`
		TTLHours        int    `yaml:"ttl_hours"`
		CleanupInterval int    `yaml:"cleanup_interval_minutes"`
	} `yaml:"session"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Admin struct {
		BootstrapUsername string `yaml:"bootstrap_username"`
		BootstrapPassword string `yaml:"bootstrap_password"`
	} `yaml:"admin"`
}

var AppConfig *Config

// LoadConfig загружает глобальный конфиг и завершает процесс при ошибке.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// Load читает .env (если есть), YAML файл из CONFIG_PATH, затем
// переопределения из окружения. Отсутствие файла по умолчанию не ошибка:
// в контейнерах конфиг обычно приходит только через окружение.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	explicitPath := configPath != ""
	if !explicitPath {
		configPath = defaultConfigPath
	}

	if err := readFile(&cfg, configPath); err != nil {
		if explicitPath || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("Config file %s not found, using environment only", configPath)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("SERVER_HOST", &cfg.Server.Host)
	setString("SERVER_ENV", &cfg.Server.Env)
	if err := setInt("SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}

	setString("DATABASE_URL", &cfg.Database.DSN)
	if v, ok := os.LookupEnv("DATABASE_AUTO_MIGRATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_AUTO_MIGRATE: %w", err)
		}
		cfg.Database.AutoMigrate = b
	}

	setString("STRIPE_SECRET_KEY", &cfg.Stripe.SecretKey)
	setString("STRIPE_WEBHOOK_SECRET", &cfg.Stripe.WebhookSecret)
	setString("STRIPE_CURRENCY", &cfg.Stripe.Currency)
	setString("STRIPE_API_BASE_URL", &cfg.Stripe.APIBaseURL)
	if v, ok := os.LookupEnv("REQUIRE_SIGNED_WEBHOOKS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REQUIRE_SIGNED_WEBHOOKS: %w", err)
		}
		cfg.Stripe.RequireSignedWebhooks = &b
	}

	setString("SESSION_SECRET", &cfg.Session.Secret)
	if err := setInt("SESSION_TTL_HOURS", &cfg.Session.TTLHours); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		cfg.CORS.AllowedOrigins = splitList(v)
	}

	setString("SMTP_HOST", &cfg.Email.SMTPHost)
	if err := setInt("SMTP_PORT", &cfg.Email.SMTPPort); err != nil {
		return err
	}
	setString("SMTP_USER", &cfg.Email.SMTPUsername)
	setString("SMTP_PASSWORD", &cfg.Email.SMTPPassword)
	setString("SMTP_FROM_EMAIL", &cfg.Email.FromEmail)

	setString("ADMIN_BOOTSTRAP_USERNAME", &cfg.Admin.BootstrapUsername)
	setString("ADMIN_BOOTSTRAP_PASSWORD", &cfg.Admin.BootstrapPassword)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 4242
	}
	if c.Server.Env == "" {
		c.Server.Env = "production"
	}
	if c.Stripe.Currency == "" {
		c.Stripe.Currency = "usd"
	}
	c.Stripe.Currency = strings.ToLower(c.Stripe.Currency)
	if c.Stripe.RequireSignedWebhooks == nil {
		required := true
		c.Stripe.RequireSignedWebhooks = &required
	}
	if c.Stripe.ReconcileConcurrency <= 0 {
		c.Stripe.ReconcileConcurrency = 4
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "admin_session"
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 7 * 24
	}
	if c.Session.CleanupInterval <= 0 {
		c.Session.CleanupInterval = 60
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Donations"
	}
}

// Validate проверяет настройки, без которых сервер не запустится.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.DSN == "" {
		problems = append(problems, "database.url (DATABASE_URL) is required")
	}
	if c.Session.Secret == "" {
		problems = append(problems, "session.secret (SESSION_SECRET) is required")
	}
	if c.SignedWebhooksRequired() && c.Stripe.WebhookSecret == "" {
		problems = append(problems, "stripe.webhook_secret is required unless require_signed_webhooks is false")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func (c *Config) SignedWebhooksRequired() bool {
	return c.Stripe.RequireSignedWebhooks == nil || *c.Stripe.RequireSignedWebhooks
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

func (c *Config) SMTPEnabled() bool {
	return c.Email.SMTPHost != "" && c.Email.FromEmail != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
