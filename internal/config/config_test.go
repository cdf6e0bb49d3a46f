package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.Database.PingTimeout)
	assert.Equal(t, TransportHTTP, cfg.SMS.Transport)
	require.Len(t, cfg.SMS.Providers, 1)
	assert.Equal(t, 3, cfg.SMS.Providers[0].Breaker.FailThreshold)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: file
  file_path: /tmp/enrolled.json
sms:
  enabled: true
  transport: kafka
  kafka:
    brokers: ["localhost:9092"]
`), 0o600))

	t.Setenv("ENROLL_WEBHOOK_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "/tmp/enrolled.json", cfg.Store.FilePath)
	assert.Equal(t, "from-env", cfg.Webhook.Secret)
	assert.Equal(t, []string{"localhost:9092"}, cfg.SMS.Kafka.Brokers)
	assert.Equal(t, "sms.normal", cfg.SMS.Kafka.Topic)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)
	base.Webhook.Secret = "s"
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.Webhook.Secret = " "
	assert.ErrorContains(t, noSecret.Validate(), "webhook.secret")

	badDriver := base
	badDriver.Store.Driver = "clickhouse"
	assert.ErrorContains(t, badDriver.Validate(), "unknown store.driver")

	noDSN := base
	noDSN.Store.Driver = DriverPostgres
	noDSN.Store.Database.DSN = ""
	assert.ErrorContains(t, noDSN.Validate(), "dsn is required")

	badTransport := base
	badTransport.SMS.Enabled = true
	badTransport.SMS.Transport = "carrier-pigeon"
	assert.ErrorContains(t, badTransport.Validate(), "unknown sms.transport")
}

func TestLoad_BadConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [driver: file\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
