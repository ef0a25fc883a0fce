package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	ExternalURL     string `mapstructure:"external_url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	AdminPort       int    `mapstructure:"admin_port"`
	EnableGzip      bool   `mapstructure:"enable_gzip"`
	StatusResponse  string `mapstructure:"status_response"`
	DataCenter      string `mapstructure:"datacenter"`
	BidderInfoDir   string `mapstructure:"bidder_info_dir"`
	BidderParamsDir string `mapstructure:"bidder_params_dir"`

	Metrics Metrics `mapstructure:"metrics"`
	Preview Preview `mapstructure:"preview"`

	// Adapters holds host overrides of the static bidder-info files, keyed by bidder name.
	Adapters map[string]Adapter `mapstructure:"adapters"`

	// BidderInfos is the resolved per bidder configuration: the bidder-info files with the
	// Adapters overrides applied. It is not read from viper directly.
	BidderInfos BidderInfos `mapstructure:"-"`
}

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host               string `mapstructure:"host"`
	Database           string `mapstructure:"database"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MetricSendInterval int    `mapstructure:"metric_send_interval"`
}

func (cfg *InfluxMetrics) validate(errs []error) []error {
	if cfg.Host != "" && cfg.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive when metrics.influxdb.host is set. Got %d", cfg.MetricSendInterval))
	}
	return errs
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) validate(errs []error) []error {
	if cfg.Port > 0 && cfg.TimeoutMillisRaw <= 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive if metrics.prometheus.port is defined. Got timeout=%d and port=%d", cfg.TimeoutMillisRaw, cfg.Port))
	}
	return errs
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

// Preview configures the /passback/preview endpoint.
type Preview struct {
	// Transport is "echo" to answer every bidder call in process with its own payload, or "http"
	// to post it to the bidder endpoint.
	Transport     string `mapstructure:"transport"`
	TimeoutMillis int    `mapstructure:"timeout_ms"`
}

const (
	PreviewTransportEcho = "echo"
	PreviewTransportHTTP = "http"
)

func (cfg *Preview) validate(errs []error) []error {
	if cfg.Transport != PreviewTransportEcho && cfg.Transport != PreviewTransportHTTP {
		errs = append(errs, fmt.Errorf("preview.transport must be one of %s or %s. Got %q", PreviewTransportEcho, PreviewTransportHTTP, cfg.Transport))
	}
	if cfg.TimeoutMillis <= 0 {
		errs = append(errs, fmt.Errorf("preview.timeout_ms must be positive. Got %d", cfg.TimeoutMillis))
	}
	return errs
}

func (cfg *Preview) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillis) * time.Millisecond
}

// Server holds the host settings passed to every bidder Builder.
type Server struct {
	ExternalUrl string
	DataCenter  string
}

// Server returns the host settings shared with the bidder builders.
func (cfg *Configuration) Server() Server {
	return Server{
		ExternalUrl: cfg.ExternalURL,
		DataCenter:  cfg.DataCenter,
	}
}

func (cfg *Configuration) validate() []error {
	var errs []error
	if cfg.Port <= 0 {
		errs = append(errs, fmt.Errorf("port must be positive. Got %d", cfg.Port))
	}
	if cfg.AdminPort <= 0 {
		errs = append(errs, fmt.Errorf("admin_port must be positive. Got %d", cfg.AdminPort))
	}
	if cfg.AdminPort == cfg.Port {
		errs = append(errs, errors.New("admin_port and port must be different"))
	}
	errs = cfg.Metrics.Influxdb.validate(errs)
	errs = cfg.Metrics.Prometheus.validate(errs)
	errs = cfg.Preview.validate(errs)
	errs = validateAdapterOverrides(cfg.Adapters, errs)
	errs = cfg.BidderInfos.validate(errs)
	return errs
}

// New uses viper to get our server configurations, then merges the host adapter overrides
// into the given bidder infos.
func New(v *viper.Viper, bidderInfos BidderInfos) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	c.Adapters = normalizeAdapterKeys(c.Adapters)
	c.BidderInfos = applyBidderInfoOverrides(bidderInfos, c.Adapters)

	glog.Infof("Bidders configured: %s", strings.Join(c.BidderInfos.names(), ", "))

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

// SetupViper sets the defaults and the config sources. An empty filename skips reading a config file.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("external_url", "http://localhost:8000")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")
	v.SetDefault("datacenter", "")
	v.SetDefault("bidder_info_dir", "./static/bidder-info")
	v.SetDefault("bidder_params_dir", "./static/bidder-params")
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "predict")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("preview.transport", PreviewTransportEcho)
	v.SetDefault("preview.timeout_ms", 1000)

	v.SetEnvPrefix("PBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map keys are invisible to AutomaticEnv, so adapter overrides are bound explicitly.
	for _, bidder := range openrtb_ext.CoreBidderNames() {
		prefix := "adapters." + strings.ToLower(string(bidder))
		v.BindEnv(prefix + ".endpoint")
		v.BindEnv(prefix + ".extra_info")
		v.BindEnv(prefix + ".disabled")
	}

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			glog.Warningf("Unable to read config file %s, using defaults and environment: %v", filename, err)
		}
	}
}
