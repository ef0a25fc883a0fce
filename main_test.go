package main

import (
	"os"
	"testing"

	"github.com/predictinteractive/predict-server/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 6060, cfg.AdminPort)
	assert.Equal(t, config.PreviewTransportEcho, cfg.Preview.Transport)
	assert.Contains(t, cfg.BidderInfos, "predict")
	assert.Contains(t, cfg.BidderInfos, "passback_mediaforce")
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("PBS_ADAPTERS_PASSBACK_MEDIAFORCE_DISABLED", "true")
	t.Setenv("PBS_PORT", "9000")

	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.BidderInfos["passback_mediaforce"].Disabled)
	assert.False(t, cfg.BidderInfos["predict"].Disabled)
}

func TestLoadConfigMissingBidderInfo(t *testing.T) {
	v := viper.New()
	v.Set("bidder_info_dir", os.TempDir()+"/predict-server-missing")

	_, err := loadConfig(v, "")
	assert.Error(t, err)
}
