package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/passback"
	"github.com/predictinteractive/predict-server/util/jsonutil"
	"github.com/predictinteractive/predict-server/util/randomutil"
	"github.com/predictinteractive/predict-server/util/uuidutil"
	"golang.org/x/text/currency"
)

const (
	defaultCPM            = 0.01
	defaultCacheBusterMax = 500
	defaultCurrency       = "USD"
	noAdTagPrefix         = "no_at_"
)

type adapter struct {
	endpoint        string
	currency        string
	defaultCPM      float64
	cacheBusterMax  int64
	predRAEnabled   bool
	passback        *passback.Generator
	uuidGenerator   uuidutil.UUIDGenerator
	randomGenerator randomutil.RandomGenerator
}

// ExtraInfo is read from adapters.predict.extra_info.
type ExtraInfo struct {
	DefaultCPM     float64 `json:"default_cpm,omitempty"`
	CacheBusterMax int64   `json:"cache_buster_max,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	// PredRAEnabled lets publishers flag house ad requests with pred_ra=yes. Off by default.
	PredRAEnabled bool `json:"pred_ra_enabled,omitempty"`
	passback.Config
}

// Builder builds a new instance of the Predict adapter for the given bidder with the given config.
func Builder(bidderName openrtb_ext.BidderName, config config.Adapter, server config.Server) (adapters.Bidder, error) {
	if _, err := url.ParseRequestURI(config.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %v", err)
	}

	extraInfo, err := parseExtraInfo(config.ExtraAdapterInfo)
	if err != nil {
		return nil, err
	}

	bidder := &adapter{
		endpoint:        config.Endpoint,
		currency:        extraInfo.Currency,
		defaultCPM:      extraInfo.DefaultCPM,
		cacheBusterMax:  extraInfo.CacheBusterMax,
		predRAEnabled:   extraInfo.PredRAEnabled,
		passback:        passback.NewGenerator(extraInfo.Config),
		uuidGenerator:   uuidutil.UUIDRandomGenerator{},
		randomGenerator: randomutil.RandomNumberGenerator{},
	}
	return bidder, nil
}

func parseExtraInfo(v string) (ExtraInfo, error) {
	extraInfo := ExtraInfo{
		DefaultCPM:     defaultCPM,
		CacheBusterMax: defaultCacheBusterMax,
		Currency:       defaultCurrency,
	}
	if v == "" {
		return extraInfo, nil
	}

	if err := jsonutil.Unmarshal([]byte(v), &extraInfo); err != nil {
		return extraInfo, fmt.Errorf("invalid extra info: %w", err)
	}
	if extraInfo.DefaultCPM <= 0 {
		return extraInfo, errors.New("invalid extra info: default_cpm must be positive")
	}
	if extraInfo.CacheBusterMax <= 0 {
		return extraInfo, errors.New("invalid extra info: cache_buster_max must be positive")
	}

	parsedCurrency, err := currency.ParseISO(extraInfo.Currency)
	if err != nil {
		return extraInfo, fmt.Errorf("invalid extra info: invalid currency %s", extraInfo.Currency)
	}
	extraInfo.Currency = parsedCurrency.String()
	return extraInfo, nil
}

func (a *adapter) MakeRequests(request *openrtb2.BidRequest, reqInfo *adapters.ExtraRequestInfo) ([]*adapters.RequestData, []error) {
	return NewRequestData(a.endpoint, request.Imp, decodeParams)
}

func decodeParams(params json.RawMessage) error {
	var ext openrtb_ext.ExtImpPredict
	return jsonutil.Unmarshal(params, &ext)
}

func (a *adapter) MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *adapters.RequestData, response *adapters.ResponseData) (*adapters.BidderResponse, []error) {
	if err := CheckStatus(response); err != nil {
		return nil, []error{err}
	}

	body, err := DecodeEcho(externalRequest)
	if err != nil {
		return nil, []error{err}
	}

	bidResponse := adapters.NewBidderResponseWithBidsCapacity(len(body.Bids))
	bidResponse.Currency = a.currency

	var errs []error
	for _, bid := range body.Bids {
		result, bidErrs := a.interpretBid(bid)
		errs = append(errs, bidErrs...)
		if result == nil {
			continue
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

func (a *adapter) interpretBid(bid Bid) (*BidResult, []error) {
	var params openrtb_ext.ExtImpPredict
	if err := jsonutil.Unmarshal(bid.Params, &params); err != nil {
		return nil, []error{&errortypes.BadServerResponse{
			Message: fmt.Sprintf("bid %s: params could not be decoded: %s", bid.BidID, err.Error()),
		}}
	}

	size, err := bid.FirstSize()
	if err != nil {
		return nil, []error{err}
	}

	var errs []error
	cpm, ok := parseFloor(params.Floor)
	if !ok {
		cpm = a.defaultCPM
		if isFloorSet(params.Floor) {
			errs = append(errs, &errortypes.Warning{
				Message:     fmt.Sprintf("bid %s: floor %s is not a valid price, using %g", bid.BidID, string(params.Floor), a.defaultCPM),
				WarningCode: errortypes.InvalidFloorWarningCode,
			})
		}
	}

	creativeID, err := a.creativeID(params.AtID)
	if err != nil {
		return nil, append(errs, err)
	}

	result := &BidResult{
		RequestID:  bid.BidID,
		CPM:        cpm,
		Width:      size.Width(),
		Height:     size.Height(),
		TTL:        TTL,
		CreativeID: creativeID,
		NetRevenue: false,
		Currency:   a.currency,
	}

	if source := selectPassback(&params); source != nil {
		ad, err := source.render(a.passback, size, &params)
		if err != nil {
			return nil, append(errs, err)
		}
		result.Ad = ad
		result.PassbackIntegration = source.integration
		return result, errs
	}

	adURL, err := a.passback.HouseAd(
		size.Width(),
		size.Height(),
		a.randomGenerator.GenerateInt63n(a.cacheBusterMax),
		params.Passback,
		a.predRAEnabled && params.PredRA.String() == "yes",
	)
	if err != nil {
		return nil, append(errs, err)
	}
	result.AdURL = adURL
	return result, errs
}

// creativeID is required by the host but not used by Predict.
func (a *adapter) creativeID(atID jsonutil.LooseString) (string, error) {
	if atID.Truthy() {
		return atID.String(), nil
	}
	id, err := a.uuidGenerator.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate creative id: %v", err)
	}
	return noAdTagPrefix + id, nil
}
