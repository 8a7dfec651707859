package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "dashboard-assets",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	tests := []struct {
		name   string
		mutate func(*config.StorageConfig)
		errMsg string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"bad public base url", func(c *config.StorageConfig) { c.PublicBaseURL = "not a url" }, "public base url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("valid config creates storage", func(t *testing.T) {
		s, err := NewS3ObjectStorage(validConfig())
		require.NoError(t, err)
		assert.Equal(t, "dashboard-assets", s.Bucket())
		assert.Equal(t, maxPresignExpiration, s.presignExpiration)
	})

	t.Run("presign expiration is capped at seven days", func(t *testing.T) {
		cfg := validConfig()
		cfg.PresignExpiration = 30 * 24 * time.Hour
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, maxPresignExpiration, s.presignExpiration)

		cfg.PresignExpiration = time.Hour
		s, err = NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_URL(t *testing.T) {
	ctx := context.Background()

	t.Run("public base url", func(t *testing.T) {
		cfg := validConfig()
		cfg.PublicBaseURL = "https://cdn.sparkcode.io/assets/"
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)

		u, err := s.URL(ctx, "logos/dashboard_logo_1700000000000")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.sparkcode.io/assets/logos/dashboard_logo_1700000000000", u)
	})

	t.Run("presigned url is signed locally", func(t *testing.T) {
		s, err := NewS3ObjectStorage(validConfig())
		require.NoError(t, err)

		u, err := s.URL(ctx, "logos/dashboard_logo_1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:9000/dashboard-assets/logos/dashboard_logo_1"), u)
		assert.Contains(t, u, "X-Amz-Signature=")
	})

	t.Run("empty key", func(t *testing.T) {
		s, err := NewS3ObjectStorage(validConfig())
		require.NoError(t, err)
		_, err = s.URL(ctx, "")
		assert.Error(t, err)
		_, err = s.Put(ctx, "", "image/png", strings.NewReader("x"), 1)
		assert.Error(t, err)
		assert.Error(t, s.Delete(ctx, ""))
	})
}
