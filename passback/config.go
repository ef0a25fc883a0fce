package passback

// Config holds the third-party hosts and account ids baked into the passback creatives.
// Zero values are replaced by the defaults.
type Config struct {
	HouseAdURL       string `json:"house_ad_url,omitempty"`
	AdSenseClient    string `json:"adsense_client,omitempty"`
	AdSenseScriptURL string `json:"adsense_script_url,omitempty"`
	OneWorldHost     string `json:"oneworld_host,omitempty"`
	AdsterraHost     string `json:"adsterra_host,omitempty"`
	AmityURL         string `json:"amity_url,omitempty"`
	MediaForceURL    string `json:"mediaforce_url,omitempty"`
	MediaForcePID    string `json:"pid,omitempty"`
	MediaForceSubID  string `json:"subid,omitempty"`
}

const (
	defaultHouseAdURL       = "//content.predictinteractive.com/images/index.php"
	defaultAdSenseClient    = "ca-pub-5220182163543194"
	defaultAdSenseScriptURL = "https://pagead2.googlesyndication.com/pagead/show_ads.js"
	defaultOneWorldHost     = "delivery.1worldonline.com"
	defaultAdsterraHost     = "www.displayformatrevenue.com"
	defaultAmityURL         = "https://tg1.amitydigital.io/api/adserver/spt"
	defaultMediaForceURL    = "//serve2.mediaforce.com/"
	defaultMediaForcePID    = "212"
	defaultMediaForceSubID  = "[predint]"
)

// DefaultConfig returns the production passback hosts and ids.
func DefaultConfig() Config {
	return Config{
		HouseAdURL:       defaultHouseAdURL,
		AdSenseClient:    defaultAdSenseClient,
		AdSenseScriptURL: defaultAdSenseScriptURL,
		OneWorldHost:     defaultOneWorldHost,
		AdsterraHost:     defaultAdsterraHost,
		AmityURL:         defaultAmityURL,
		MediaForceURL:    defaultMediaForceURL,
		MediaForcePID:    defaultMediaForcePID,
		MediaForceSubID:  defaultMediaForceSubID,
	}
}

// WithDefaults returns a copy of the config with every empty field set to its default.
func (cfg Config) WithDefaults() Config {
	def := DefaultConfig()
	if cfg.HouseAdURL == "" {
		cfg.HouseAdURL = def.HouseAdURL
	}
	if cfg.AdSenseClient == "" {
		cfg.AdSenseClient = def.AdSenseClient
	}
	if cfg.AdSenseScriptURL == "" {
		cfg.AdSenseScriptURL = def.AdSenseScriptURL
	}
	if cfg.OneWorldHost == "" {
		cfg.OneWorldHost = def.OneWorldHost
	}
	if cfg.AdsterraHost == "" {
		cfg.AdsterraHost = def.AdsterraHost
	}
	if cfg.AmityURL == "" {
		cfg.AmityURL = def.AmityURL
	}
	if cfg.MediaForceURL == "" {
		cfg.MediaForceURL = def.MediaForceURL
	}
	if cfg.MediaForcePID == "" {
		cfg.MediaForcePID = def.MediaForcePID
	}
	if cfg.MediaForceSubID == "" {
		cfg.MediaForceSubID = def.MediaForceSubID
	}
	return cfg
}
