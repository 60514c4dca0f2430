package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Backend.HealthTimeout)
	assert.Equal(t, SessionFile, cfg.Session.Backend)
	assert.Equal(t, "session.json", filepath.Base(cfg.Session.Path))
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.InDelta(t, 5.0, cfg.Import.Rate, 0.001)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	v := viper.New()
	v.Set("backend.base_url", "https://finanzas.example.com/")
	v.Set("backend.timeout", "30s")
	v.Set("session.backend", SessionSQLite)
	v.Set("session.path", "~/data/session.db")
	v.Set("logging.format", "json")
	v.Set("import.rate", 2)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://finanzas.example.com/", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionSQLite, cfg.Session.Backend)
	assert.Equal(t, filepath.Join(dir, "data", "session.db"), cfg.Session.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.InDelta(t, 2.0, cfg.Import.Rate, 0.001)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("FINANZAS_BACKEND_BASE_URL", "http://10.0.0.5:9000")

	v := viper.New()
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Backend.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		wantErr error
		set     map[string]any
		name    string
	}{
		{name: "relative base url", set: map[string]any{"backend.base_url": "localhost"}, wantErr: common.ErrInvalidConfig},
		{name: "empty base url", set: map[string]any{"backend.base_url": ""}, wantErr: common.ErrMissingConfig},
		{name: "unknown session backend", set: map[string]any{"session.backend": "redis"}, wantErr: common.ErrInvalidConfig},
		{name: "bad log level", set: map[string]any{"logging.level": "loud"}, wantErr: common.ErrInvalidConfig},
		{name: "bad log format", set: map[string]any{"logging.format": "xml"}, wantErr: common.ErrInvalidConfig},
		{name: "negative rate", set: map[string]any{"import.rate": -1}, wantErr: common.ErrInvalidConfig},
		{name: "zero timeout", set: map[string]any{"backend.timeout": "0s"}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", t.TempDir())
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Run("service account from viper", func(t *testing.T) {
		t.Setenv("HOME", "/home/test")
		v := viper.New()
		v.Set("sheets.service_account_path", "~/sa.json")
		v.Set("sheets.batch_size", 50)

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/home/test/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, 50, cfg.BatchSize)
		assert.Equal(t, "Finanzas", cfg.SpreadsheetName)
	})

	t.Run("oauth from environment", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		cfg, err := LoadSheetsConfig(viper.New())
		require.NoError(t, err)
		assert.True(t, cfg.HasOAuth())
		assert.Empty(t, cfg.TokenFile)
	})

	t.Run("client without refresh token uses token file", func(t *testing.T) {
		t.Setenv("HOME", "/home/test")
		v := viper.New()
		v.Set("sheets.client_id", "id")
		v.Set("sheets.client_secret", "secret")

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/home/test/.config/finanzas/sheets_token.json", cfg.TokenFile)
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")

		_, err := LoadSheetsConfig(viper.New())
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	t.Setenv("FINANZAS_DIR", "/srv/finanzas")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: "/home/test"},
		{in: "~/x/y", want: "/home/test/x/y"},
		{in: "$FINANZAS_DIR/session.db", want: "/srv/finanzas/session.db"},
		{in: "/abs/path", want: "/abs/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
