package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBidderInfos() BidderInfos {
	return BidderInfos{
		"predict": {
			Endpoint:     "https://content.predictinteractive.com/l/n/predictBid.php",
			Maintainer:   &MaintainerInfo{Email: "dev@predictinteractive.com"},
			Capabilities: &CapabilitiesInfo{Site: &PlatformInfo{MediaTypes: []openrtb_ext.BidType{"banner"}}},
		},
		"passback_mediaforce": {
			Endpoint:     "https://content.predictinteractive.com/l/n/predictBid.php?bidder=predictMediaForce",
			Maintainer:   &MaintainerInfo{Email: "dev@predictinteractive.com"},
			Capabilities: &CapabilitiesInfo{Site: &PlatformInfo{MediaTypes: []openrtb_ext.BidType{"banner"}}},
		},
	}
}

func newViperFromYAML(t *testing.T, yaml string) *viper.Viper {
	v := viper.New()
	SetupViper(v, "")
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer([]byte(yaml))))
	return v
}

func TestDefaults(t *testing.T) {
	v := newViperFromYAML(t, "")

	cfg, err := New(v, validBidderInfos())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 6060, cfg.AdminPort)
	assert.Equal(t, "http://localhost:8000", cfg.ExternalURL)
	assert.False(t, cfg.EnableGzip)
	assert.Equal(t, "./static/bidder-info", cfg.BidderInfoDir)
	assert.Equal(t, "./static/bidder-params", cfg.BidderParamsDir)
	assert.Equal(t, "predict", cfg.Metrics.Prometheus.Namespace)
	assert.Equal(t, 10000, cfg.Metrics.Prometheus.TimeoutMillisRaw)
	assert.Equal(t, 20, cfg.Metrics.Influxdb.MetricSendInterval)
	assert.Equal(t, "echo", cfg.Preview.Transport)
	assert.Equal(t, time.Second, cfg.Preview.Timeout())
	assert.Equal(t, validBidderInfos(), cfg.BidderInfos)
}

func TestFullConfig(t *testing.T) {
	v := newViperFromYAML(t, `
external_url: http://predict.example.com
host: 127.0.0.1
port: 1234
admin_port: 5678
enable_gzip: true
status_response: ok
datacenter: eu1
metrics:
  influxdb:
    host: http://influx.example.com
    database: predict
    username: admin
    password: secret
    metric_send_interval: 30
  prometheus:
    port: 8765
    namespace: pi
    subsystem: adapters
    timeout_ms: 500
adapters:
  Predict:
    endpoint: https://staging.predictinteractive.com/l/n/predictBid.php
    extra_info: '{"default_cpm":0.02}'
  passback_mediaforce:
    disabled: true
`)

	cfg, err := New(v, validBidderInfos())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 1234, cfg.Port)
	assert.Equal(t, 5678, cfg.AdminPort)
	assert.True(t, cfg.EnableGzip)
	assert.Equal(t, "ok", cfg.StatusResponse)
	assert.Equal(t, Server{ExternalUrl: "http://predict.example.com", DataCenter: "eu1"}, cfg.Server())
	assert.Equal(t, "http://influx.example.com", cfg.Metrics.Influxdb.Host)
	assert.Equal(t, 30, cfg.Metrics.Influxdb.MetricSendInterval)
	assert.Equal(t, 8765, cfg.Metrics.Prometheus.Port)
	assert.Equal(t, "adapters", cfg.Metrics.Prometheus.Subsystem)
	assert.Equal(t, int64(500), cfg.Metrics.Prometheus.Timeout().Milliseconds())

	predict := cfg.BidderInfos["predict"]
	assert.Equal(t, "https://staging.predictinteractive.com/l/n/predictBid.php", predict.Endpoint)
	assert.Equal(t, `{"default_cpm":0.02}`, predict.ExtraAdapterInfo)
	assert.True(t, predict.IsEnabled())

	mediaForce := cfg.BidderInfos["passback_mediaforce"]
	assert.False(t, mediaForce.IsEnabled())
	assert.Equal(t, validBidderInfos()["passback_mediaforce"].Endpoint, mediaForce.Endpoint)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PBS_PORT", "9000")
	t.Setenv("PBS_ADAPTERS_PREDICT_ENDPOINT", "https://env.predictinteractive.com/bid")

	v := newViperFromYAML(t, "")

	cfg, err := New(v, validBidderInfos())
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://env.predictinteractive.com/bid", cfg.BidderInfos["predict"].Endpoint)
}

func TestValidationErrors(t *testing.T) {
	testCases := []struct {
		description  string
		yaml         string
		expectErrors []string
	}{
		{
			description:  "same-ports",
			yaml:         "port: 7000\nadmin_port: 7000",
			expectErrors: []string{"admin_port and port must be different"},
		},
		{
			description:  "negative-port",
			yaml:         "port: -1",
			expectErrors: []string{"port must be positive. Got -1"},
		},
		{
			description:  "influx-without-interval",
			yaml:         "metrics:\n  influxdb:\n    host: http://influx\n    metric_send_interval: 0",
			expectErrors: []string{"metrics.influxdb.metric_send_interval must be positive when metrics.influxdb.host is set. Got 0"},
		},
		{
			description:  "prometheus-without-timeout",
			yaml:         "metrics:\n  prometheus:\n    port: 8080\n    timeout_ms: 0",
			expectErrors: []string{"metrics.prometheus.timeout_ms must be positive if metrics.prometheus.port is defined. Got timeout=0 and port=8080"},
		},
		{
			description:  "unknown-preview-transport",
			yaml:         "preview:\n  transport: grpc",
			expectErrors: []string{`preview.transport must be one of echo or http. Got "grpc"`},
		},
		{
			description:  "non-positive-preview-timeout",
			yaml:         "preview:\n  timeout_ms: 0",
			expectErrors: []string{"preview.timeout_ms must be positive. Got 0"},
		},
		{
			description:  "invalid-endpoint",
			yaml:         "adapters:\n  predict:\n    endpoint: not a url",
			expectErrors: []string{"The endpoint: not a url for predict is not a valid URL"},
		},
		{
			description:  "invalid-extra-info",
			yaml:         "adapters:\n  predict:\n    extra_info: '{broken'",
			expectErrors: []string{"The extra_info for predict is not valid JSON: {broken"},
		},
		{
			description:  "unknown-adapter",
			yaml:         "adapters:\n  unknown:\n    endpoint: https://example.com",
			expectErrors: []string{"adapters.unknown does not match a known bidder"},
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			v := newViperFromYAML(t, test.yaml)

			_, err := New(v, validBidderInfos())
			require.Error(t, err)

			aggregate, ok := err.(errortypes.AggregateErrors)
			require.True(t, ok, "expected AggregateErrors, got %T", err)
			actual := make([]string, 0, len(aggregate.Errors))
			for _, e := range aggregate.Errors {
				actual = append(actual, e.Error())
			}
			assert.ElementsMatch(t, test.expectErrors, actual)
		})
	}
}

func TestDisabledBidderSkipsValidation(t *testing.T) {
	infos := validBidderInfos()
	mediaForce := infos["passback_mediaforce"]
	mediaForce.Endpoint = ""
	mediaForce.Disabled = true
	infos["passback_mediaforce"] = mediaForce

	v := newViperFromYAML(t, "")

	_, err := New(v, infos)
	assert.NoError(t, err)
}
