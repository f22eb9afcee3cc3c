package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int `mapstructure:"idle_timeout_sec"`
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name        string
	Env         string
	HTTP        HTTP
	Admin       AdminHTTP
	CORSOrigins []string `mapstructure:"cors_origins"`
	StaticDir   string   `mapstructure:"static_dir"`
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Auth struct {
	// StaticToken is the shared secret compared against the access cookie.
	StaticToken       string `mapstructure:"static_token"`
	CookieName        string `mapstructure:"cookie_name"`
	CookieSecure      bool   `mapstructure:"cookie_secure"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	JWTIssuer         string `mapstructure:"jwt_issuer"`
	AccessTokenTTLMin int    `mapstructure:"access_token_ttl_min"`
}

type DB struct {
	Driver             string // mongo | postgres | mysql | memory
	URI                string
	Database           string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	ConnectTimeoutSec  int    `mapstructure:"connect_timeout_sec"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Cache struct {
	ListingTTLSec int `mapstructure:"listing_ttl_sec"`
}

type ImageHost struct {
	Provider     string // cloudinary | s3 | none
	UploadURL    string `mapstructure:"upload_url"`
	UploadPreset string `mapstructure:"upload_preset"`
	MaxBytes     int64  `mapstructure:"max_bytes"`
}

type S3 struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PublicURL string `mapstructure:"public_url"`
}

type Tracing struct {
	Endpoint    string
	ServiceName string `mapstructure:"service_name"`
	Version     string
}

type Limits struct {
	RPS            float64
	Burst          int
	MaxConcurrent  int64 `mapstructure:"max_concurrent"`
	MaxBodyMB      int64 `mapstructure:"max_body_mb"`
	RequestTimeout int   `mapstructure:"request_timeout_sec"`
}

type Config struct {
	App       App
	Log       Log
	Auth      Auth
	DB        DB
	Redis     Redis
	Cache     Cache
	ImageHost ImageHost `mapstructure:"imagehost"`
	S3        S3
	Tracing   Tracing
	Limits    Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "estate-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.read_timeout_sec", 10)
	v.SetDefault("app.http.write_timeout_sec", 15)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 3001)
	v.SetDefault("app.cors_origins", []string{})
	v.SetDefault("app.static_dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/estate-api.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 14)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("auth.static_token", "")
	v.SetDefault("auth.cookie_name", "access_token")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "estate-api")
	v.SetDefault("auth.access_token_ttl_min", 60*24)

	v.SetDefault("db.driver", "mongo")
	v.SetDefault("db.uri", "mongodb://localhost:27017")
	v.SetDefault("db.database", "estate")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.connect_timeout_sec", 10)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.listing_ttl_sec", 60)

	v.SetDefault("imagehost.provider", "none")
	v.SetDefault("imagehost.upload_url", "")
	v.SetDefault("imagehost.upload_preset", "")
	v.SetDefault("imagehost.max_bytes", 2<<20)

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.public_url", "")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "estate-api")
	v.SetDefault("tracing.version", "dev")

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.max_concurrent", 300)
	v.SetDefault("limits.max_body_mb", 16)
	v.SetDefault("limits.request_timeout_sec", 10)
}

// Load reads the YAML file at path (CONFIG_PATH, then
// ./configs/config.local.yaml) and overlays APP_* environment variables,
// e.g. APP_DB_URI or APP_AUTH_STATIC_TOKEN. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
