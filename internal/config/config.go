package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type ScheduleConfig struct {
	Timezone    string
	Location    *time.Location
	RebuildCron string
	ExpiryCron  string
}

// DocumentsConfig labels generated reports and calendar feeds.
type DocumentsConfig struct {
	CompanyName    string
	CalendarDomain string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Schedule    ScheduleConfig
	Documents   DocumentsConfig
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Schedule: ScheduleConfig{
			Timezone:    v.GetString("SCHEDULE_TIMEZONE"),
			RebuildCron: v.GetString("SCHEDULE_INDEX_REBUILD_CRON"),
			ExpiryCron:  v.GetString("SCHEDULE_EXPIRY_CRON"),
		},
		Documents: DocumentsConfig{
			CompanyName:    v.GetString("COMPANY_NAME"),
			CalendarDomain: v.GetString("CALENDAR_DOMAIN"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7091
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverPostgres
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Asia/Dubai"
	}
	if cfg.Schedule.RebuildCron == "" {
		cfg.Schedule.RebuildCron = "*/30 * * * *"
	}
	if cfg.Schedule.ExpiryCron == "" {
		cfg.Schedule.ExpiryCron = "5 0 * * *"
	}

	if cfg.Documents.CompanyName == "" {
		cfg.Documents.CompanyName = "Pest Control Services"
	}
	if cfg.Documents.CalendarDomain == "" {
		cfg.Documents.CalendarDomain = "pestcare.local"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("SCHEDULE_TIMEZONE: %w", err)
	}
	cfg.Schedule.Location = loc
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case DriverPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverMemory)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
