package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]string) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{
		"DB_DSN":            "postgres://localhost/visits",
		"JWT_ACCESS_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7091, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "Asia/Dubai", cfg.Schedule.Timezone)
	require.NotNil(t, cfg.Schedule.Location)
	assert.Equal(t, "Asia/Dubai", cfg.Schedule.Location.String())
	assert.Equal(t, "*/30 * * * *", cfg.Schedule.RebuildCron)
	assert.Equal(t, "Pest Control Services", cfg.Documents.CompanyName)
	assert.Equal(t, "pestcare.local", cfg.Documents.CalendarDomain)
}

func TestMemoryDriverSkipsDSN(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{
		"DB_DRIVER":            "Memory",
		"JWT_ACCESS_SECRET":    "secret",
		"CORS_ALLOWED_ORIGINS": "https://office.example, https://field.example,",
		"SCHEDULE_TIMEZONE":    "UTC",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, []string{"https://office.example", "https://field.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "UTC", cfg.Schedule.Location.String())
}

func TestValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing dsn":    {"JWT_ACCESS_SECRET": "secret"},
		"missing secret": {"DB_DSN": "postgres://localhost/visits"},
		"unknown driver": {"DB_DRIVER": "mysql", "JWT_ACCESS_SECRET": "secret"},
		"unknown zone":   {"DB_DRIVER": "memory", "JWT_ACCESS_SECRET": "secret", "SCHEDULE_TIMEZONE": "Mars/Olympus"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromViper(newViper(values))
			assert.Error(t, err)
		})
	}
}
