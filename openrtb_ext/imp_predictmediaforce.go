package openrtb_ext

import "github.com/predictinteractive/predict-server/util/jsonutil"

// ExtImpPredictMediaForce defines the contract for bidrequest.imp[i].ext.prebid.bidder.passback_mediaforce
//
// The placement id is accepted for parity with the page setup but MediaForce creatives are
// built from host configured ids only, so any value is accepted.
type ExtImpPredictMediaForce struct {
	PlacementID jsonutil.LooseString `json:"placementid,omitempty"`
}
