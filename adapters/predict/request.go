package predict

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/util/jsonutil"
)

// Body is the payload posted to predictBid.php. The server does not answer with bids, so the
// adapters read the same payload back when building them.
type Body struct {
	Bids []Bid `json:"bids"`
}

// Bid is one ad slot of the payload.
type Bid struct {
	BidID  string          `json:"bidId"`
	Params json.RawMessage `json:"params"`
	Sizes  []Size          `json:"sizes"`
}

// Size is a [width, height] pair.
type Size [2]int64

func (s Size) Width() int64  { return s[0] }
func (s Size) Height() int64 { return s[1] }

// ParamsDecoder checks that imp.ext.bidder can be read by the adapter.
type ParamsDecoder func(params json.RawMessage) error

// NewRequestData builds the single POST carrying every valid imp, in imp order. Imps which
// fail validation are reported and left out; when none is left no request is made.
func NewRequestData(endpoint string, imps []openrtb2.Imp, decode ParamsDecoder) ([]*adapters.RequestData, []error) {
	var errs []error
	body := Body{Bids: make([]Bid, 0, len(imps))}
	validImps := make([]openrtb2.Imp, 0, len(imps))

	for _, imp := range imps {
		bid, err := newBid(imp, decode)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		body.Bids = append(body.Bids, bid)
		validImps = append(validImps, imp)
	}

	if len(body.Bids) == 0 {
		return nil, errs
	}

	reqJSON, err := jsonutil.Marshal(body)
	if err != nil {
		return nil, append(errs, err)
	}

	headers := http.Header{}
	headers.Add("Content-Type", "application/json;charset=utf-8")
	headers.Add("Accept", "application/json")

	return []*adapters.RequestData{{
		Method:  http.MethodPost,
		Uri:     endpoint,
		Body:    reqJSON,
		Headers: headers,
		ImpIDs:  openrtb_ext.GetImpIDs(validImps),
	}}, errs
}

func newBid(imp openrtb2.Imp, decode ParamsDecoder) (Bid, error) {
	params, dataType, _, err := jsonparser.Get(imp.Ext, "bidder")
	if err != nil || dataType != jsonparser.Object {
		return Bid{}, &errortypes.BadInput{
			Message: fmt.Sprintf("imp %s: imp.ext.bidder must be a JSON object", imp.ID),
		}
	}
	if err := decode(params); err != nil {
		return Bid{}, &errortypes.BadInput{
			Message: fmt.Sprintf("imp %s: invalid imp.ext.bidder: %s", imp.ID, err.Error()),
		}
	}

	sizes, err := impSizes(imp)
	if err != nil {
		return Bid{}, err
	}

	return Bid{
		BidID:  imp.ID,
		Params: json.RawMessage(params),
		Sizes:  sizes,
	}, nil
}

// impSizes returns the banner formats, falling back to banner.w and banner.h.
func impSizes(imp openrtb2.Imp) ([]Size, error) {
	if imp.Banner == nil {
		return nil, &errortypes.BadInput{
			Message: fmt.Sprintf("imp %s: only banner impressions are supported", imp.ID),
		}
	}

	sizes := make([]Size, 0, len(imp.Banner.Format)+1)
	for _, format := range imp.Banner.Format {
		sizes = append(sizes, Size{format.W, format.H})
	}
	if len(sizes) == 0 && imp.Banner.W != nil && imp.Banner.H != nil {
		sizes = append(sizes, Size{*imp.Banner.W, *imp.Banner.H})
	}

	if len(sizes) == 0 {
		return nil, &errortypes.InvalidImpSize{
			ImpID:   imp.ID,
			Message: fmt.Sprintf("imp %s: banner has no sizes", imp.ID),
		}
	}
	for _, size := range sizes {
		if size.Width() <= 0 || size.Height() <= 0 {
			return nil, &errortypes.InvalidImpSize{
				ImpID:   imp.ID,
				Message: fmt.Sprintf("imp %s: invalid size %dx%d", imp.ID, size.Width(), size.Height()),
			}
		}
	}
	return sizes, nil
}

// DecodeEcho reads the payload of the request which produced the response.
func DecodeEcho(externalRequest *adapters.RequestData) (Body, error) {
	var body Body
	if externalRequest == nil {
		return body, &errortypes.BadServerResponse{Message: "missing bid request payload"}
	}
	if err := jsonutil.Unmarshal(externalRequest.Body, &body); err != nil {
		return body, &errortypes.BadServerResponse{
			Message: fmt.Sprintf("bid request payload could not be decoded: %s", err.Error()),
		}
	}
	return body, nil
}

// FirstSize returns the size the creative is rendered at.
func (b Bid) FirstSize() (Size, error) {
	if len(b.Sizes) == 0 {
		return Size{}, &errortypes.BadServerResponse{
			Message: fmt.Sprintf("bid %s: payload has no sizes", b.BidID),
		}
	}
	return b.Sizes[0], nil
}

// CheckStatus accepts 204 and every 2xx.
func CheckStatus(response *adapters.ResponseData) error {
	if adapters.IsResponseStatusCodeNoContent(response) {
		return nil
	}
	return adapters.CheckResponseStatusCodeForErrors(response)
}
