package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchtool/internal/domain"
)

// clearEnv blanks every variable ApplyEnvOverrides reads so the host
// environment cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERPER_API_KEY", "SEARCHTOOL_SEARCH_API_KEY", "SEARCHTOOL_SEARCH_WEB_URL",
		"SEARCHTOOL_SEARCH_NEWS_URL", "SEARCHTOOL_SEARCH_TIMEOUT", "SEARCHTOOL_SEARCH_TOP_N",
		"SEARCHTOOL_SEARCH_MAX_ATTEMPTS", "SEARCHTOOL_SEARCH_INITIAL_BACKOFF",
		"SEARCHTOOL_SERVER_RATE_PER_SEC", "SEARCHTOOL_SERVER_BURST",
		"SEARCHTOOL_LOGGER_LEVEL", "SEARCHTOOL_LOGGER_FORMAT", "SEARCHTOOL_LOGGER_OUTPUT",
		"SEARCHTOOL_TRACER_ENABLED", "SEARCHTOOL_TRACER_EXPORTER", "SEARCHTOOL_CONFIG_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "searchtool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 15*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 4, cfg.Search.TopN)
	assert.Equal(t, 3, cfg.Search.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Search.InitialBackoff)
	assert.Equal(t, DefaultWebURL, cfg.Search.WebURL)
	assert.Equal(t, DefaultNewsURL, cfg.Search.NewsURL)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.NoError(t, Validate(cfg))
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.TopN)
	assert.Empty(t, cfg.Search.APIKey)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
search:
  api_key: "file-key"
  timeout: 5s
  top_n: 6
  max_attempts: 5
  initial_backoff: 250ms
server:
  rate_per_sec: 2.5
  burst: 3
logger:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Search.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 6, cfg.Search.TopN)
	assert.Equal(t, 5, cfg.Search.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.InitialBackoff)
	assert.Equal(t, 2.5, cfg.Server.RatePerSec)
	assert.Equal(t, 3, cfg.Server.Burst)
	assert.Equal(t, "debug", cfg.Logger.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultNewsURL, cfg.Search.NewsURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "search: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
}

func TestLoadInsecurePermissions(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "search:\n  top_n: 2\n")
	require.NoError(t, os.Chmod(path, 0o666))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure permissions")
}

func TestLoadValidationFailure(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "search:\n  top_n: 0\n  max_attempts: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors, 2)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERPER_API_KEY", "env-key")
	t.Setenv("SEARCHTOOL_SEARCH_TOP_N", "7")
	t.Setenv("SEARCHTOOL_SEARCH_TIMEOUT", "3s")
	t.Setenv("SEARCHTOOL_SEARCH_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("SEARCHTOOL_LOGGER_LEVEL", "warn")
	t.Setenv("SEARCHTOOL_TRACER_ENABLED", "true")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "env-key", cfg.Search.APIKey)
	assert.Equal(t, 7, cfg.Search.TopN)
	assert.Equal(t, 3*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 3, cfg.Search.MaxAttempts, "unparseable value is ignored")
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.True(t, cfg.Tracer.Enabled)
}

func TestEnvOverrideSpecificKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERPER_API_KEY", "generic")
	t.Setenv("SEARCHTOOL_SEARCH_API_KEY", "specific")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)
	assert.Equal(t, "specific", cfg.Search.APIKey)
}

func TestEnvOverridesFileValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERPER_API_KEY", "env-key")
	path := writeConfig(t, "search:\n  api_key: file-key\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Search.APIKey)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encrypted, err := EncryptValue("serper-secret", "pass")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "serper-secret")

	decrypted, err := DecryptValue(encrypted, "pass")
	require.NoError(t, err)
	assert.Equal(t, "serper-secret", decrypted)
}

func TestDecryptWrongPassphrase(t *testing.T) {
	encrypted, err := EncryptValue("secret", "correct-pass")
	require.NoError(t, err)

	_, err = DecryptValue(encrypted, "wrong-pass")
	assert.Error(t, err)
}

func TestDecryptMalformed(t *testing.T) {
	_, err := DecryptValue("no-separator", "pass")
	assert.Error(t, err)

	_, err = DecryptValue("zz:00", "pass")
	assert.Error(t, err)

	_, err = DecryptValue("00:00", "pass")
	assert.Error(t, err)
}

func TestLoadDecryptsAPIKey(t *testing.T) {
	clearEnv(t)
	encrypted, err := EncryptValue("real-key", "passphrase")
	require.NoError(t, err)
	path := writeConfig(t, "search:\n  api_key: \"enc:"+encrypted+"\"\n")
	t.Setenv("SEARCHTOOL_CONFIG_KEY", "passphrase")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "real-key", cfg.Search.APIKey)
}

func TestLoadDecryptWrongKey(t *testing.T) {
	clearEnv(t)
	encrypted, err := EncryptValue("real-key", "passphrase")
	require.NoError(t, err)
	path := writeConfig(t, "search:\n  api_key: \"enc:"+encrypted+"\"\n")
	t.Setenv("SEARCHTOOL_CONFIG_KEY", "other")

	_, err = Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecryption)
}

func TestLoadEncryptedKeyWithoutPassphraseStaysEncrypted(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "search:\n  api_key: \"enc:abc:def\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cfg.Search.APIKey, "enc:"))
}
