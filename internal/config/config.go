package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPPort string `mapstructure:"HTTP_PORT"`
	GRPCPort string `mapstructure:"GRPC_PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	RedisAddr  string `mapstructure:"REDIS_ADDR"`

	UserSecret  string        `mapstructure:"JWT_USER_SECRET"`
	AdminSecret string        `mapstructure:"JWT_ADMIN_SECRET"`
	TokenTTL    time.Duration `mapstructure:"TOKEN_TTL"`
	BcryptCost  int           `mapstructure:"BCRYPT_COST"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	UploadDriver       string `mapstructure:"UPLOAD_DRIVER"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	UploadPublicPrefix string `mapstructure:"UPLOAD_PUBLIC_PREFIX"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	S3PublicURL        string `mapstructure:"S3_PUBLIC_URL"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "HTTP_PORT", "GRPC_PORT",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "REDIS_ADDR",
	"JWT_USER_SECRET", "JWT_ADMIN_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	"ALLOWED_ORIGINS",
	"UPLOAD_DRIVER", "UPLOAD_DIR", "UPLOAD_PUBLIC_PREFIX",
	"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PUBLIC_URL",
}

// LoadConfig reads app.env from path (if present) and lets environment
// variables override it.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	// bind explicitly so Unmarshal sees env-only keys
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("HTTP_PORT", ":3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("TOKEN_TTL", "0s")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("UPLOAD_DRIVER", "disk")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_PUBLIC_PREFIX", "/uploads")

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

func (c Config) Validate() error {
	if c.UserSecret == "" || c.AdminSecret == "" {
		return errors.New("JWT_USER_SECRET and JWT_ADMIN_SECRET must be set")
	}
	if c.UserSecret == c.AdminSecret {
		return errors.New("JWT_USER_SECRET and JWT_ADMIN_SECRET must differ")
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	switch c.UploadDriver {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 upload driver")
		}
	default:
		return errors.New("UPLOAD_DRIVER must be disk or s3")
	}
	return nil
}

func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
