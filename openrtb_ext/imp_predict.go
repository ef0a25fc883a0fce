package openrtb_ext

import (
	"bytes"
	"encoding/json"

	"github.com/predictinteractive/predict-server/util/jsonutil"
)

// ExtImpPredict defines the contract for bidrequest.imp[i].ext.prebid.bidder.predict
type ExtImpPredict struct {
	Floor    json.RawMessage      `json:"floor,omitempty"`
	AtID     jsonutil.LooseString `json:"at_id,omitempty"`
	Passback *string              `json:"-"`
	PredRA   jsonutil.LooseString `json:"pred_ra,omitempty"`

	Amity    ExtImpPredictAmity    `json:"passback_amity"`
	Adsterra ExtImpPredictAdsterra `json:"passback_adsterra"`
	OneWorld ExtImpPredictOneWorld `json:"oneworld"`
	AdSense  ExtImpPredictAdSense  `json:"passback_adsense"`
}

// ExtImpPredictAmity holds the Amity Digital tag ids.
type ExtImpPredictAmity struct {
	AvPublisherID jsonutil.LooseString `json:"avpublisherid"`
	AvTagID       jsonutil.LooseString `json:"avtagid"`
}

// ExtImpPredictAdsterra holds the Adsterra invoke key.
type ExtImpPredictAdsterra struct {
	Key jsonutil.LooseString `json:"key"`
}

// ExtImpPredictOneWorld holds the 1worldonline auction and unit ids.
type ExtImpPredictOneWorld struct {
	AdAuctionID jsonutil.LooseString `json:"adauctionid"`
	AdUnitID    jsonutil.LooseString `json:"adunitid"`
}

// ExtImpPredictAdSense holds the AdSense slot id.
type ExtImpPredictAdSense struct {
	DataAdSlot jsonutil.LooseString `json:"dataadslot"`
}

// UnmarshalJSON decodes the params, keeping the raw passback query fragment only when it was
// sent with a non-null value.
func (ext *ExtImpPredict) UnmarshalJSON(b []byte) error {
	type alias ExtImpPredict
	aux := struct {
		*alias
		Passback json.RawMessage `json:"passback"`
	}{alias: (*alias)(ext)}

	if err := jsonutil.UnmarshalValid(b, &aux); err != nil {
		return err
	}

	ext.Passback = nil
	return jsonutil.ParseIntoString(aux.Passback, &ext.Passback)
}

func (p *ExtImpPredictAmity) UnmarshalJSON(b []byte) error {
	type alias ExtImpPredictAmity
	return unmarshalPartner(b, (*alias)(p))
}

func (p *ExtImpPredictAdsterra) UnmarshalJSON(b []byte) error {
	type alias ExtImpPredictAdsterra
	return unmarshalPartner(b, (*alias)(p))
}

func (p *ExtImpPredictOneWorld) UnmarshalJSON(b []byte) error {
	type alias ExtImpPredictOneWorld
	return unmarshalPartner(b, (*alias)(p))
}

func (p *ExtImpPredictAdSense) UnmarshalJSON(b []byte) error {
	type alias ExtImpPredictAdSense
	return unmarshalPartner(b, (*alias)(p))
}

// unmarshalPartner decodes a partner object. Any other JSON value leaves the partner unset, so
// it loses its place in the passback priority order instead of failing the imp.
func unmarshalPartner(b []byte, v interface{}) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	return jsonutil.UnmarshalValid(b, v)
}
