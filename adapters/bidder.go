package adapters

import (
	"encoding/json"
	"net/http"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/openrtb_ext"
)

// Bidder describes how to connect to external demand.
type Bidder interface {
	// MakeRequests makes the HTTP requests which should be made to fetch bids.
	//
	// Bidder implementations can assume that the incoming BidRequest has:
	//
	//   1. Only {Imp.Type, Platform} combinations which are valid, as defined by the static/bidder-info.{bidder}.yaml file.
	//   2. Imp.Ext of the form {"bidder": params}, where "params" has been validated against the static/bidder-params/{bidder}.json JSON Schema.
	//
	// nil return values are acceptable, but nil elements *inside* those slices are not.
	//
	// The errors should contain a list of errors which explain why this bidder's bids will be
	// "subpar" in some way. For example: the request contained ad types which this bidder doesn't support.
	//
	// If the error is caused by bad user input, return an errortypes.BadInput.
	MakeRequests(request *openrtb2.BidRequest, reqInfo *ExtraRequestInfo) ([]*RequestData, []error)

	// MakeBids unpacks the server's response into Bids.
	//
	// The internal request is the one given to MakeRequests and the external request is the
	// RequestData which produced the response.
	//
	// The bids can be nil (for no bids), but should not contain nil elements.
	//
	// If the error was caused by bad user input, return an errortypes.BadInput.
	// If the error was caused by a bad server response, return an errortypes.BadServerResponse.
	MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *RequestData, response *ResponseData) (*BidderResponse, []error)
}

// Builder is a function type which creates a Bidder from its configuration.
type Builder func(openrtb_ext.BidderName, config.Adapter, config.Server) (Bidder, error)

// BidderResponse wraps the server's response with the list of bids and the currency used by
// the bidder.
//
// Currency declaration is not mandatory but helps to detect an eventual currency mismatch issue.
// From the bid response, the bidder accepts a list of valid currencies for the bid.
// The currency is the same across all bids.
type BidderResponse struct {
	Currency string
	Bids     []*TypedBid
}

// NewBidderResponseWithBidsCapacity create a new BidderResponse initialising the bids array capacity and the default currency value
// to "USD".
//
// bidsCapacity allows to set initial Bids array capacity.
func NewBidderResponseWithBidsCapacity(bidsCapacity int) *BidderResponse {
	return &BidderResponse{
		Currency: "USD",
		Bids:     make([]*TypedBid, 0, bidsCapacity),
	}
}

// NewBidderResponse create a new BidderResponse initialising the bids array and the default currency value
// to "USD".
func NewBidderResponse() *BidderResponse {
	return NewBidderResponseWithBidsCapacity(0)
}

// TypedBid packages the openrtb2.Bid with any bidder-specific information that the host needs.
//
// TypedBid.Bid.Ext is returned as "response.seatbid[i].bid.ext" and TypedBid.BidType as
// "response.seatbid[i].bid.ext.prebid.type".
type TypedBid struct {
	Bid     *openrtb2.Bid
	BidType openrtb_ext.BidType
}

// ResponseData packages together information from the server's http.Response.
type ResponseData struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// RequestData packages together the fields needed to make an http.Request.
type RequestData struct {
	Method  string
	Uri     string
	Body    []byte
	Headers http.Header
	ImpIDs  []string
}

// ExtImpBidder can be used by Bidders to unmarshal any request.imp[i].ext.
type ExtImpBidder struct {
	Prebid *json.RawMessage `json:"prebid,omitempty"`

	// Bidder contains the bidder-specific extension. Bidders should unmarshal it into their
	// corresponding openrtb_ext.ExtImp{Bidder} struct.
	Bidder json.RawMessage `json:"bidder"`
}

// ExtraRequestInfo carries host side details which are not part of the OpenRTB request.
type ExtraRequestInfo struct {
	PbsEntryPoint string
}

func NewExtraRequestInfo(entryPoint string) ExtraRequestInfo {
	return ExtraRequestInfo{
		PbsEntryPoint: entryPoint,
	}
}
