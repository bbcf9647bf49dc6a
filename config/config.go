package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Mail     MailConfig     `mapstructure:"mail"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | mysql
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent | error | warn | info
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessExpire  time.Duration `mapstructure:"access_expire"`
	RefreshExpire time.Duration `mapstructure:"refresh_expire"`
	Issuer        string        `mapstructure:"issuer"`
}

type OTPConfig struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Digits int           `mapstructure:"digits"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type UploadConfig struct {
	Driver      string `mapstructure:"driver"` // local | supabase
	Dir         string `mapstructure:"dir"`
	URLPrefix   string `mapstructure:"url_prefix"`
	MaxSize     int64  `mapstructure:"max_size"`
	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
	Bucket      string `mapstructure:"bucket"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json | text
	Output     string `mapstructure:"output"` // stdout | file | both
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// Load reads the yaml file at path (optional) and overlays environment
// variables prefixed with EDUCENTER_. The legacy DB_*, PORT, SMTP_* and
// SUPABASE_* variables are still honoured.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path == "" {
		path = os.Getenv("EDUCENTER_CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("EDUCENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "Asia/Tashkent")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("jwt.access_expire", "15m")
	v.SetDefault("jwt.refresh_expire", "168h")
	v.SetDefault("jwt.issuer", "educenter")

	v.SetDefault("otp.ttl", "5m")
	v.SetDefault("otp.digits", 6)

	v.SetDefault("mail.smtp_host", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", 587)

	v.SetDefault("upload.driver", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.url_prefix", "/image")
	v.SetDefault("upload.max_size", 5<<20)
	v.SetDefault("upload.bucket", "uploads")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allow_credentials", true)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "EDUCENTER_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.host", "EDUCENTER_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "EDUCENTER_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "EDUCENTER_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "EDUCENTER_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "EDUCENTER_DATABASE_NAME", "DB_NAME")
	_ = v.BindEnv("jwt.access_secret", "EDUCENTER_JWT_ACCESS_SECRET", "JWT_SECRET")
	_ = v.BindEnv("jwt.refresh_secret", "EDUCENTER_JWT_REFRESH_SECRET", "JWT_REFRESH_SECRET")
	_ = v.BindEnv("redis.url", "EDUCENTER_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("mail.username", "EDUCENTER_MAIL_USERNAME", "SMTP_EMAIL")
	_ = v.BindEnv("mail.password", "EDUCENTER_MAIL_PASSWORD", "SMTP_PASSWORD")
	_ = v.BindEnv("upload.supabase_url", "EDUCENTER_UPLOAD_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("upload.supabase_key", "EDUCENTER_UPLOAD_SUPABASE_KEY", "SUPABASE_KEY")
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s", c.Server.Mode)
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("jwt access_secret and refresh_secret are required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt access_secret and refresh_secret must differ")
	}
	switch c.Upload.Driver {
	case "local":
	case "supabase":
		if c.Upload.SupabaseURL == "" || c.Upload.SupabaseKey == "" {
			return errors.New("supabase_url and supabase_key are required for the supabase upload driver")
		}
	default:
		return fmt.Errorf("unsupported upload driver: %s", c.Upload.Driver)
	}
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return fmt.Errorf("invalid otp digits: %d", c.OTP.Digits)
	}
	return nil
}
