package predictmediaforce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/adapters/predict"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/passback"
	"github.com/predictinteractive/predict-server/util/jsonutil"
	"github.com/predictinteractive/predict-server/util/uuidutil"
	"golang.org/x/text/currency"
)

const (
	// Revenue is reconciled statically as wins / 1000 * cpm, so the floor param is not used.
	defaultCPM      = 0.50
	defaultCurrency = "USD"
)

type adapter struct {
	endpoint      string
	cpm           float64
	currency      string
	passback      *passback.Generator
	uuidGenerator uuidutil.UUIDGenerator
}

// ExtraInfo is read from adapters.passback_mediaforce.extra_info. The MediaForce ids come
// from the embedded passback config (pid, subid, mediaforce_url).
type ExtraInfo struct {
	CPM      float64 `json:"cpm,omitempty"`
	Currency string  `json:"currency,omitempty"`
	passback.Config
}

// Builder builds a new instance of the MediaForce passback adapter for the given bidder with the given config.
func Builder(bidderName openrtb_ext.BidderName, config config.Adapter, server config.Server) (adapters.Bidder, error) {
	if _, err := url.ParseRequestURI(config.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %v", err)
	}

	extraInfo := ExtraInfo{CPM: defaultCPM, Currency: defaultCurrency}
	if config.ExtraAdapterInfo != "" {
		if err := jsonutil.Unmarshal([]byte(config.ExtraAdapterInfo), &extraInfo); err != nil {
			return nil, fmt.Errorf("invalid extra info: %w", err)
		}
	}
	if extraInfo.CPM <= 0 {
		return nil, errors.New("invalid extra info: cpm must be positive")
	}
	parsedCurrency, err := currency.ParseISO(extraInfo.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid extra info: invalid currency %s", extraInfo.Currency)
	}

	bidder := &adapter{
		endpoint:      config.Endpoint,
		cpm:           extraInfo.CPM,
		currency:      parsedCurrency.String(),
		passback:      passback.NewGenerator(extraInfo.Config),
		uuidGenerator: uuidutil.UUIDRandomGenerator{},
	}
	return bidder, nil
}

func (a *adapter) MakeRequests(request *openrtb2.BidRequest, reqInfo *adapters.ExtraRequestInfo) ([]*adapters.RequestData, []error) {
	return predict.NewRequestData(a.endpoint, request.Imp, decodeParams)
}

func decodeParams(params json.RawMessage) error {
	var ext openrtb_ext.ExtImpPredictMediaForce
	return jsonutil.Unmarshal(params, &ext)
}

func (a *adapter) MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *adapters.RequestData, response *adapters.ResponseData) (*adapters.BidderResponse, []error) {
	if err := predict.CheckStatus(response); err != nil {
		return nil, []error{err}
	}

	body, err := predict.DecodeEcho(externalRequest)
	if err != nil {
		return nil, []error{err}
	}

	// the tag URL does not depend on the slot
	adURL, err := a.passback.MediaForce()
	if err != nil {
		return nil, []error{err}
	}

	bidResponse := adapters.NewBidderResponseWithBidsCapacity(len(body.Bids))
	bidResponse.Currency = a.currency

	var errs []error
	for _, bid := range body.Bids {
		size, err := bid.FirstSize()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		creativeID, err := a.uuidGenerator.Generate()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to generate creative id: %v", err))
			continue
		}

		result := predict.BidResult{
			RequestID:  bid.BidID,
			CPM:        a.cpm,
			Width:      size.Width(),
			Height:     size.Height(),
			TTL:        predict.TTL,
			CreativeID: creativeID,
			NetRevenue: true,
			Currency:   a.currency,
			AdURL:      adURL,
		}

		typedBid, err := result.TypedBid()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bidResponse.Bids = append(bidResponse.Bids, typedBid)
	}
	return bidResponse, errs
}
