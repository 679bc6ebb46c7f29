package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	BaseURL     string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"taskmate"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"168h"`

	RedisURL          string        `envconfig:"REDIS_URL" default:"redis://redis:6379"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"5m"`

	AWSRegion          string `envconfig:"AWS_REGION"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSS3Bucket        string `envconfig:"AWS_S3_BUCKET"`
	UploadDir          string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	MaxAvatarBytes     int64  `envconfig:"MAX_AVATAR_BYTES" default:"5242880"`

	FirebaseServiceAccountPath string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`

	RBACModelPath  string `envconfig:"RBAC_MODEL_PATH" default:"config/rbac_model.conf"`
	RBACPolicyPath string `envconfig:"RBAC_POLICY_PATH" default:"config/policy.csv"`

	MinBookingHours     int `envconfig:"MIN_BOOKING_HOURS" default:"1"`
	MaxBookingHours     int `envconfig:"MAX_BOOKING_HOURS" default:"12"`
	DefaultBookingHours int `envconfig:"DEFAULT_BOOKING_HOURS" default:"2"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.MinBookingHours < 1 || c.MaxBookingHours < c.MinBookingHours {
		return fmt.Errorf("invalid booking hour bounds %d-%d", c.MinBookingHours, c.MaxBookingHours)
	}
	if c.DefaultBookingHours < c.MinBookingHours || c.DefaultBookingHours > c.MaxBookingHours {
		return fmt.Errorf("default booking hours %d outside %d-%d", c.DefaultBookingHours, c.MinBookingHours, c.MaxBookingHours)
	}
	return nil
}

// DSN is the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// S3Enabled reports whether AWS credentials are configured.
func (c Config) S3Enabled() bool {
	return c.AWSRegion != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}
