package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func r2Config() CloudflareR2UploaderConfig {
	return CloudflareR2UploaderConfig{
		AccountID:       "acct",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "logos",
		PublicBaseURL:   "https://cdn.example.com",
	}
}

func TestNewCloudflareR2UploaderRejectsIncompleteConfig(t *testing.T) {
	cfg := r2Config()
	cfg.AccessKeyID = ""
	cfg.BucketName = ""

	_, err := NewCloudflareR2Uploader(cfg)
	require.ErrorIs(t, err, ErrIncompleteR2Config)
	assert.Contains(t, err.Error(), "access key ID")
	assert.Contains(t, err.Error(), "bucket name")
}

func TestNewCloudflareR2UploaderRejectsMalformedBaseURL(t *testing.T) {
	cfg := r2Config()
	cfg.PublicBaseURL = "https://[::1"

	_, err := NewCloudflareR2Uploader(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public base URL")
}

func TestGetPublicURLJoinsBaseAndKey(t *testing.T) {
	uploader, err := NewCloudflareR2Uploader(r2Config())
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/teams/3/logo.png", uploader.GetPublicURL("teams/3/logo.png"))
	assert.Equal(t, "https://cdn.example.com/teams/3/logo.png", uploader.GetPublicURL("/teams/3/logo.png"))
	assert.Empty(t, uploader.GetPublicURL(""))
}
