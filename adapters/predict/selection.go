package predict

import (
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/passback"
)

// Passback integration tags. They match the lowercased ad provider names reported to analytics.
const (
	IntegrationAmity    = "passback_amity"
	IntegrationAdsterra = "passback_adsterra"
	IntegrationOneWorld = "oneworld"
	IntegrationAdSense  = "passback_adsense"
)

type passbackSource struct {
	integration string
	available   func(params *openrtb_ext.ExtImpPredict) bool
	render      func(g *passback.Generator, size Size, params *openrtb_ext.ExtImpPredict) (string, error)
}

// passbackSources is ordered by priority. The house ad is used when none is available.
var passbackSources = []passbackSource{
	{
		integration: IntegrationAmity,
		available: func(params *openrtb_ext.ExtImpPredict) bool {
			return params.Amity.AvPublisherID.Truthy() && params.Amity.AvTagID.Truthy()
		},
		render: func(g *passback.Generator, size Size, params *openrtb_ext.ExtImpPredict) (string, error) {
			return g.Amity(params.Amity)
		},
	},
	{
		integration: IntegrationAdsterra,
		available: func(params *openrtb_ext.ExtImpPredict) bool {
			return params.Adsterra.Key.Truthy()
		},
		render: func(g *passback.Generator, size Size, params *openrtb_ext.ExtImpPredict) (string, error) {
			return g.Adsterra(size.Width(), size.Height(), params.Adsterra)
		},
	},
	{
		integration: IntegrationOneWorld,
		available: func(params *openrtb_ext.ExtImpPredict) bool {
			return params.OneWorld.AdAuctionID.Truthy() && params.OneWorld.AdUnitID.Truthy()
		},
		render: func(g *passback.Generator, size Size, params *openrtb_ext.ExtImpPredict) (string, error) {
			return g.OneWorld(params.OneWorld)
		},
	},
	{
		integration: IntegrationAdSense,
		available: func(params *openrtb_ext.ExtImpPredict) bool {
			return params.AdSense.DataAdSlot.Truthy()
		},
		render: func(g *passback.Generator, size Size, params *openrtb_ext.ExtImpPredict) (string, error) {
			return g.AdSense(size.Width(), size.Height(), params.AdSense)
		},
	},
}

func selectPassback(params *openrtb_ext.ExtImpPredict) *passbackSource {
	for i := range passbackSources {
		if passbackSources[i].available(params) {
			return &passbackSources[i]
		}
	}
	return nil
}
