package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TrustedProxies []string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	ConnectAttempts int
}

type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	ConnectAttempts int
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	BucketDocuments string
	UseSSL          bool
	Region          string
	PresignTTL      time.Duration
	MaxUploadBytes  int64
}

type SecurityConfig struct {
	JWTAccessSecret string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	SignatureSecret string
	MaxSessions     int
	InvitationTTL   time.Duration
}

type GoogleOAuthConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Issuer       string
}

type OAuthConfig struct {
	Google   GoogleOAuthConfig
	StateTTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type WorkerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type LocaleConfig struct {
	Default  string
	Currency string
	Timezone string
}

type AppConfig struct {
	Environment      string
	Log              LogConfig
	HTTP             HTTPConfig
	TLS              TLSConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	OAuth            OAuthConfig
	RateLimit        RateLimitConfig
	Worker           WorkerConfig
	Locale           LocaleConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("BUILDFLOW")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c *AppConfig) Validate() error {
	if c.Security.JWTAccessSecret == "" {
		return fmt.Errorf("security.jwtaccesssecret is required")
	}
	if c.Environment == "production" && len(c.Security.JWTAccessSecret) < 32 {
		return fmt.Errorf("security.jwtaccesssecret must be at least 32 bytes in production")
	}
	if c.Security.MaxSessions <= 0 {
		return fmt.Errorf("security.maxsessions must be positive")
	}
	if c.OAuth.Google.Enabled && (c.OAuth.Google.ClientID == "" || c.OAuth.Google.RedirectURL == "") {
		return fmt.Errorf("oauth.google requires clientid and redirecturl when enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 5)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.connectattempts", 5)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dialtimeout", "5s")
	v.SetDefault("redis.readtimeout", "3s")
	v.SetDefault("redis.connectattempts", 5)

	v.SetDefault("storage.bucketdocuments", "buildflow-documents")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "eu-central-1")
	v.SetDefault("storage.presignttl", "15m")
	v.SetDefault("storage.maxuploadbytes", 50<<20)

	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "720h") // 30 days
	v.SetDefault("security.maxsessions", 10)
	v.SetDefault("security.invitationttl", "336h") // 14 days

	v.SetDefault("oauth.google.issuer", "https://accounts.google.com")
	v.SetDefault("oauth.statettl", "10m")

	v.SetDefault("ratelimit.requestspersecond", 1.0)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("worker.stream", "buildflow:tasks")
	v.SetDefault("worker.group", "buildflow-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "30s")

	v.SetDefault("locale.default", "el")
	v.SetDefault("locale.currency", "EUR")
	v.SetDefault("locale.timezone", "Europe/Athens")
}
