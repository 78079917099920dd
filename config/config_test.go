package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obaudys/filegate/config"
)

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(550*1024*1024), cfg.Server.MaxUploadSize)
	assert.Equal(t, 15*time.Minute, cfg.Server.PresignExpiry)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "filegate.db", cfg.Database.DSN)
	assert.Equal(t, "file_usage", cfg.Database.Table)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "filegate", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.PathStyle)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  max_upload_size: 1048576
  presign_expiry: 1h
database:
  type: postgres
  dsn: postgres://localhost/test
  table: custom_usage
storage:
  endpoint: minio.internal:9000
  region: eu-west-1
  bucket: uploads
  access_key: testkey
  secret_key: testsecret
  use_ssl: true
log:
  level: debug
`
	err := os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadSize)
	assert.Equal(t, time.Hour, cfg.Server.PresignExpiry)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.DSN)
	assert.Equal(t, "custom_usage", cfg.Database.Table)
	assert.Equal(t, "minio.internal:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	tmpDir := t.TempDir()

	basePath := filepath.Join(tmpDir, "base.yaml")
	baseContent := `
server:
  port: 8080
database:
  type: sqlite
  dsn: filegate.db
storage:
  bucket: base-bucket
log:
  level: info
`
	err := os.WriteFile(basePath, []byte(baseContent), 0o644)
	require.NoError(t, err)

	overridePath := filepath.Join(tmpDir, "override.yaml")
	overrideContent := `
server:
  port: 9000
storage:
  bucket: override-bucket
`
	err = os.WriteFile(overridePath, []byte(overrideContent), 0o644)
	require.NoError(t, err)

	// Later files override earlier ones
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "override-bucket", cfg.Storage.Bucket)

	// Untouched values survive the merge
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvVars(t *testing.T) {
	t.Setenv("FILEGATE_SERVER_PORT", "7777")
	t.Setenv("FILEGATE_DATABASE_TYPE", "postgres")
	t.Setenv("FILEGATE_DATABASE_DSN", "postgres://env/db")
	t.Setenv("FILEGATE_STORAGE_BUCKET", "env-bucket")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, "env-bucket", cfg.Storage.Bucket)
}

func TestLoad_FlagOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("db-type", "", "")
	flags.String("db-dsn", "", "")
	flags.String("bucket", "", "")

	require.NoError(t, flags.Parse([]string{
		"--port=6060",
		"--db-type=postgres",
		"--db-dsn=postgres://flag/db",
		"--bucket=flag-bucket",
	}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://flag/db", cfg.Database.DSN)
	assert.Equal(t, "flag-bucket", cfg.Storage.Bucket)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 12345, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	// Flag default must not shadow the config default when not set
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid port",
			content: `
server:
  port: 99999
`,
		},
		{
			name: "invalid database type",
			content: `
database:
  type: oracle
`,
		},
		{
			name: "invalid log level",
			content: `
log:
  level: verbose
`,
		},
		{
			name: "empty bucket",
			content: `
storage:
  bucket: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o644))

			_, err := config.Load([]string{configPath}, nil)
			assert.Error(t, err)
		})
	}
}
