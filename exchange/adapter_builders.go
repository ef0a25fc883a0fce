package exchange

import (
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/adapters/predict"
	"github.com/predictinteractive/predict-server/adapters/predictmediaforce"
	"github.com/predictinteractive/predict-server/openrtb_ext"
)

// Adapter registration is kept in this separate file for ease of use and to aid
// in resolving merge conflicts.

func newAdapterBuilders() map[openrtb_ext.BidderName]adapters.Builder {
	return map[openrtb_ext.BidderName]adapters.Builder{
		openrtb_ext.BidderPredict:            predict.Builder,
		openrtb_ext.BidderPassbackMediaForce: predictmediaforce.Builder,
	}
}
