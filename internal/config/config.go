package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Gateway struct {
		Provider  string `mapstructure:"provider"` // cinetpay or razorpay
		APIKey    string `mapstructure:"api_key"`
		SiteID    string `mapstructure:"site_id"`
		BaseURL   string `mapstructure:"base_url"`
		KeyID     string `mapstructure:"key_id"`     // razorpay only
		KeySecret string `mapstructure:"key_secret"` // razorpay only
		NotifyURL string `mapstructure:"notify_url"`
		ReturnURL string `mapstructure:"return_url"`
		TimeoutS  int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"gateway"`

	Billing struct {
		// Commission rates in basis points so the split stays in exact
		// integer arithmetic (500 = 5%).
		PlatformRateBps int64  `mapstructure:"platform_rate_bps"`
		AgentRateBps    int64  `mapstructure:"agent_rate_bps"`
		TenantFee       int64  `mapstructure:"tenant_fee"` // fixed onboarding fee, smallest unit
		Currency        string `mapstructure:"currency"`
	} `mapstructure:"billing"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "rent-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "rent_db")
	v.SetDefault("gateway.provider", "cinetpay")
	v.SetDefault("gateway.base_url", "https://api-checkout.cinetpay.com/v2")
	v.SetDefault("gateway.timeout_seconds", 15)
	v.SetDefault("billing.platform_rate_bps", 500)
	v.SetDefault("billing.agent_rate_bps", 500)
	v.SetDefault("billing.tenant_fee", 20000)
	v.SetDefault("billing.currency", "XAF")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			// Try the S3 secrets backup (disaster recovery)
			log.Printf("[Config] JWT_SECRET not set, fetching from secrets backup...")
			cfg.JWT.Secret = fetchSecretFromBackup("config/jwt_secret.txt")
			if cfg.JWT.Secret == "" {
				log.Fatal("JWT_SECRET not found in environment or secrets backup")
			}
			log.Printf("[Config] JWT secret loaded from secrets backup")
		}
	}

	// Load gateway credentials from environment variables
	if apiKey := os.Getenv("CINETPAY_API_KEY"); apiKey != "" {
		cfg.Gateway.APIKey = apiKey
	}
	if siteID := os.Getenv("CINETPAY_SITE_ID"); siteID != "" {
		cfg.Gateway.SiteID = siteID
	}
	if keyID := os.Getenv("RAZORPAY_KEY_ID"); keyID != "" {
		cfg.Gateway.KeyID = keyID
	}
	if keySecret := os.Getenv("RAZORPAY_KEY_SECRET"); keySecret != "" {
		cfg.Gateway.KeySecret = keySecret
	}
	if notifyURL := os.Getenv("GATEWAY_NOTIFY_URL"); notifyURL != "" {
		cfg.Gateway.NotifyURL = notifyURL
	}
	if returnURL := os.Getenv("GATEWAY_RETURN_URL"); returnURL != "" {
		cfg.Gateway.ReturnURL = returnURL
	}
	if cfg.Gateway.Provider == "cinetpay" && cfg.Gateway.APIKey == "" {
		cfg.Gateway.APIKey = fetchSecretFromBackup("config/cinetpay_api_key.txt")
	}

	return &cfg
}
