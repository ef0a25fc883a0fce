// Package passback renders the fallback creatives served when a Predict slot has no partner
// bid. Every generator is a pure template rendering: identical inputs give identical output,
// and no generator validates its inputs.
package passback

import (
	"github.com/predictinteractive/predict-server/macros"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/util/jsonutil"
)

// Generator renders passback markup and URLs against one host configuration.
type Generator struct {
	cfg Config
}

// NewGenerator returns a Generator for the config, with defaults filled in.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg.WithDefaults()}
}

// Config returns the effective host configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

type houseAdParams struct {
	URL         string
	Width       int64
	Height      int64
	CacheBuster int64
	HasPassback bool
	Passback    string
	PredRA      bool
}

// HouseAd builds the Predict house ad image URL. The raw passback fragment, when set, is
// appended verbatim.
func (g *Generator) HouseAd(width, height, cacheBuster int64, rawPassback *string, predRA bool) (string, error) {
	params := houseAdParams{
		URL:         g.cfg.HouseAdURL,
		Width:       width,
		Height:      height,
		CacheBuster: cacheBuster,
		PredRA:      predRA,
	}
	if rawPassback != nil {
		params.HasPassback = true
		params.Passback = *rawPassback
	}
	return macros.ResolveMacros(houseAdTemplate, params)
}

type adSenseParams struct {
	Client    string
	Slot      jsonutil.LooseString
	Width     int64
	Height    int64
	ScriptURL string
}

// AdSense builds the show_ads.js snippet for the slot, sized explicitly.
func (g *Generator) AdSense(width, height int64, adSense openrtb_ext.ExtImpPredictAdSense) (string, error) {
	return macros.ResolveMacros(adSenseTemplate, adSenseParams{
		Client:    g.cfg.AdSenseClient,
		Slot:      adSense.DataAdSlot,
		Width:     width,
		Height:    height,
		ScriptURL: g.cfg.AdSenseScriptURL,
	})
}

type oneWorldParams struct {
	Host        string
	AdAuctionID jsonutil.LooseString
	AdUnitID    jsonutil.LooseString
}

// OneWorld builds the deferred loader which injects the RTK container and the jita.js tag
// on page load, matching the top document protocol.
func (g *Generator) OneWorld(oneWorld openrtb_ext.ExtImpPredictOneWorld) (string, error) {
	return macros.ResolveMacros(oneWorldTemplate, oneWorldParams{
		Host:        g.cfg.OneWorldHost,
		AdAuctionID: oneWorld.AdAuctionID,
		AdUnitID:    oneWorld.AdUnitID,
	})
}

type adsterraParams struct {
	Host   string
	Key    jsonutil.LooseString
	Width  int64
	Height int64
}

// Adsterra builds the atOptions iframe snippet for the key, sized explicitly.
func (g *Generator) Adsterra(width, height int64, adsterra openrtb_ext.ExtImpPredictAdsterra) (string, error) {
	return macros.ResolveMacros(adsterraTemplate, adsterraParams{
		Host:   g.cfg.AdsterraHost,
		Key:    adsterra.Key,
		Width:  width,
		Height: height,
	})
}

type amityParams struct {
	URL         string
	TagID       jsonutil.LooseString
	PublisherID jsonutil.LooseString
}

// Amity builds the async Amity Digital tag.
func (g *Generator) Amity(amity openrtb_ext.ExtImpPredictAmity) (string, error) {
	return macros.ResolveMacros(amityTemplate, amityParams{
		URL:         g.cfg.AmityURL,
		TagID:       amity.AvTagID,
		PublisherID: amity.AvPublisherID,
	})
}

type mediaForceParams struct {
	URL   string
	PID   string
	SubID string
}

// MediaForce builds the MediaForce JS tag URL from the configured partner ids.
func (g *Generator) MediaForce() (string, error) {
	return macros.ResolveMacros(mediaForceTemplate, mediaForceParams{
		URL:   g.cfg.MediaForceURL,
		PID:   g.cfg.MediaForcePID,
		SubID: g.cfg.MediaForceSubID,
	})
}
