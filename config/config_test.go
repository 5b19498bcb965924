package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{KeyPort, KeyEnv, KeyMongoURI, KeyIssueDailyLimit, KeyClassifierTimeout, KeyUploadDir, KeyMaxUploadBytes, KeyOTelEnabled} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := Load(NewViper())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, "infrasense", cfg.MongoDatabase)
	assert.Equal(t, 20, cfg.IssueDailyLimit)
	assert.Equal(t, 10*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, "images", cfg.UploadDir)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(KeyPort, "9090")
	t.Setenv(KeyEnv, "production")
	t.Setenv(KeyMongoURI, "mongodb://db:27017")
	t.Setenv(KeyIssueDailyLimit, "5")
	t.Setenv(KeyClassifierTimeout, "3s")
	t.Setenv(KeyMLServiceURL, "http://ml:8000/analyze")
	t.Setenv(KeyOTelEnabled, "true")

	cfg := Load(NewViper())
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, 5, cfg.IssueDailyLimit)
	assert.Equal(t, 3*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, "http://ml:8000/analyze", cfg.MLServiceURL)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INFRASENSE_DOTENV_CHECK=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("INFRASENSE_DOTENV_CHECK") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("INFRASENSE_DOTENV_CHECK"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := ConnectRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	_, err = ConnectRedis(context.Background(), "127.0.0.1:1", "")
	assert.Error(t, err)
}
