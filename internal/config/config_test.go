package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("SecretComesFromEnvironment", func(t *testing.T) {
		t.Setenv("POSTS_JWT_SECRET", "super-secret")

		cfg, err := LoadConfig("no-such-config.yaml")
		assert.NoError(t, err)
		assert.Equal(t, "super-secret", cfg.JWT.Secret)
	})

	t.Run("NestedKeysMapToPrefixedEnvVars", func(t *testing.T) {
		t.Setenv("POSTS_JWT_SECRET", "super-secret")
		t.Setenv("POSTS_MONGO_DATABASE", "other_db")
		t.Setenv("POSTS_HTTP_PORT", "9999")

		cfg, err := LoadConfig("no-such-config.yaml")
		assert.NoError(t, err)
		assert.Equal(t, "other_db", cfg.Mongo.Database)
		assert.Equal(t, "9999", cfg.HTTP.Port)
	})

	t.Run("MissingSecretFailsStartup", func(t *testing.T) {
		t.Setenv("POSTS_JWT_SECRET", "")

		_, err := LoadConfig("no-such-config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("DefaultsApplyWithoutConfigFile", func(t *testing.T) {
		t.Setenv("POSTS_JWT_SECRET", "super-secret")

		cfg, err := LoadConfig("no-such-config.yaml")
		assert.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTP.Port)
		assert.Equal(t, "post-images", cfg.MinIO.Bucket)
	})
}
