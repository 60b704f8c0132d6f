package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milan604/restkit/pkg/apperr"
)

func TestLoadClientConfigDefaults(t *testing.T) {
	cc, err := LoadClientConfig(New())
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cc.Timeout)
	assert.False(t, cc.InsecureSkipVerify)
	assert.Equal(t, DefaultRequestIDHeader, cc.RequestIDHeader)
	assert.Equal(t, 1, cc.RateBurst)
}

func TestLoadClientConfigFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  timeout: 5s
  user_agent: catalog-sync/1.0
  rate_limit: 2.5
  token_url: https://idp.example.com/token
  client_id: catalog
  client_secret: file-secret
`), 0o600))
	t.Setenv("RESTKIT_HTTP_CLIENT_SECRET", "env-secret")

	cc, err := LoadClientConfig(New(WithFile(path), WithEnv("RESTKIT")))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cc.Timeout)
	assert.Equal(t, "catalog-sync/1.0", cc.UserAgent)
	assert.Equal(t, 2.5, cc.RateLimit)
	assert.Equal(t, "env-secret", cc.ClientSecret)
}

func TestLoadClientConfigValidation(t *testing.T) {
	cfg := New(WithDefaults(map[string]interface{}{
		"http.token_url":  "https://idp.example.com/token",
		"http.rate_burst": -1,
	}))

	_, err := LoadClientConfig(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidConfig)

	var ae *apperr.AppError
	require.ErrorAs(t, err, &ae)
	fields := map[string]bool{}
	for _, s := range ae.Suggestions {
		fields[s.Field] = true
	}
	assert.True(t, fields["client_id"])
	assert.True(t, fields["client_secret"])
	assert.True(t, fields["rate_burst"])
}

func TestMaskedSettings(t *testing.T) {
	cfg := New(
		WithDefaults(map[string]interface{}{"token": "abc", "region": "eu"}),
		WithSensitiveKeys("token"),
	)
	masked := cfg.MaskedSettings()
	assert.Equal(t, "***REDACTED***", masked["token"])
	assert.Equal(t, "eu", masked["region"])
}

func TestLoadClientConfigFromFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	ClientFlags(fs)
	require.NoError(t, fs.Parse([]string{"--http.timeout=7s", "--http.rate_limit=3", "--http.bearer_token=flag-token"}))

	cfg := New(
		WithDefaults(map[string]any{"http.user_agent": "from-defaults"}),
		WithPFlags(fs),
	)
	cc, err := LoadClientConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cc.Timeout)
	assert.Equal(t, 3.0, cc.RateLimit)
	assert.Equal(t, 1, cc.RateBurst)
	assert.Equal(t, "flag-token", cc.BearerToken)
	assert.Equal(t, "from-defaults", cc.UserAgent)
	assert.Equal(t, DefaultRequestIDHeader, cc.RequestIDHeader)
}

func TestMaskedSettingsNestedKeys(t *testing.T) {
	cfg := New(
		WithDefaults(map[string]any{"http.bearer_token": "abc", "http.timeout": "5s"}),
		WithSensitiveKeys(SensitiveClientKeys...),
	)
	masked := cfg.MaskedSettings()
	assert.Equal(t, "***REDACTED***", masked["http.bearer_token"])
	assert.Equal(t, "5s", masked["http.timeout"])
}

func TestWithWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  user_agent: v1\n"), 0o600))

	changed := make(chan struct{}, 4)
	cfg := New(WithFile(path), WithWatch(func() { changed <- struct{}{} }))
	assert.Equal(t, "v1", cfg.GetString("http.user_agent"))

	require.NoError(t, os.WriteFile(path, []byte("http:\n  user_agent: v2\n"), 0o600))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
	assert.Eventually(t, func() bool { return cfg.GetString("http.user_agent") == "v2" }, 2*time.Second, 20*time.Millisecond)
}
