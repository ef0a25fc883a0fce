package adapters

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteBannerInfo() config.BidderInfo {
	return config.BidderInfo{
		Capabilities: &config.CapabilitiesInfo{
			Site: &config.PlatformInfo{
				MediaTypes: []openrtb_ext.BidType{openrtb_ext.BidTypeBanner},
			},
		},
	}
}

func TestAppNotSupported(t *testing.T) {
	bidder := &mockBidder{}
	constrained := BuildInfoAwareBidder(bidder, siteBannerInfo())
	bids, errs := constrained.MakeRequests(&openrtb2.BidRequest{
		Imp: []openrtb2.Imp{{ID: "imp-1", Banner: &openrtb2.Banner{}}},
		App: &openrtb2.App{},
	}, &ExtraRequestInfo{})
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "this bidder does not support app requests")
	assert.IsType(t, &errortypes.Warning{}, errs[0])
	assert.Len(t, bids, 0)
	assert.Nil(t, bidder.gotRequest)
}

func TestSiteNotSupported(t *testing.T) {
	bidder := &mockBidder{}
	info := config.BidderInfo{
		Capabilities: &config.CapabilitiesInfo{
			App: &config.PlatformInfo{
				MediaTypes: []openrtb_ext.BidType{openrtb_ext.BidTypeBanner},
			},
		},
	}
	constrained := BuildInfoAwareBidder(bidder, info)
	bids, errs := constrained.MakeRequests(&openrtb2.BidRequest{
		Imp:  []openrtb2.Imp{{ID: "imp-1", Banner: &openrtb2.Banner{}}},
		Site: &openrtb2.Site{},
	}, &ExtraRequestInfo{})
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "this bidder does not support site requests")
	assert.IsType(t, &errortypes.Warning{}, errs[0])
	assert.Len(t, bids, 0)
}

func TestRequestWithoutPlatformTreatedAsSite(t *testing.T) {
	bidder := &mockBidder{}
	constrained := BuildInfoAwareBidder(bidder, siteBannerInfo())
	_, errs := constrained.MakeRequests(&openrtb2.BidRequest{
		Imp: []openrtb2.Imp{{ID: "imp-1", Banner: &openrtb2.Banner{}}},
	}, &ExtraRequestInfo{})
	assert.Empty(t, errs)
	require.NotNil(t, bidder.gotRequest)
	assert.Len(t, bidder.gotRequest.Imp, 1)
}

func TestImpFiltering(t *testing.T) {
	bidder := &mockBidder{}
	constrained := BuildInfoAwareBidder(bidder, siteBannerInfo())

	original := []openrtb2.Imp{
		{ID: "imp-0", Video: &openrtb2.Video{}},
		{ID: "imp-1", Banner: &openrtb2.Banner{}, Native: &openrtb2.Native{}},
		{ID: "imp-2", Banner: &openrtb2.Banner{}},
	}
	request := &openrtb2.BidRequest{Imp: original, Site: &openrtb2.Site{}}

	_, errs := constrained.MakeRequests(request, &ExtraRequestInfo{})

	assert.Equal(t, []error{
		&errortypes.Warning{Message: "request.imp[0] uses video, but this bidder doesn't support it"},
		&errortypes.BadInput{Message: "request.imp[0] has no supported MediaTypes. It will be ignored"},
		&errortypes.Warning{Message: "request.imp[1] uses native, but this bidder doesn't support it"},
	}, errs)

	require.NotNil(t, bidder.gotRequest)
	require.Len(t, bidder.gotRequest.Imp, 2)
	assert.Equal(t, "imp-1", bidder.gotRequest.Imp[0].ID)
	assert.Nil(t, bidder.gotRequest.Imp[0].Native)
	assert.Equal(t, "imp-2", bidder.gotRequest.Imp[1].ID)

	assert.Len(t, request.Imp, 3, "caller's request must not be modified")
	assert.NotNil(t, request.Imp[1].Native)
}

func TestAllImpsFiltered(t *testing.T) {
	bidder := &mockBidder{}
	constrained := BuildInfoAwareBidder(bidder, siteBannerInfo())

	_, errs := constrained.MakeRequests(&openrtb2.BidRequest{
		Imp:  []openrtb2.Imp{{ID: "imp-0", Audio: &openrtb2.Audio{}}},
		Site: &openrtb2.Site{},
	}, &ExtraRequestInfo{})

	require.Len(t, errs, 3)
	assert.EqualError(t, errs[2], "Bid request didn't contain media types supported by the bidder")
	assert.Nil(t, bidder.gotRequest)
}

func TestDelegateErrorsAreKept(t *testing.T) {
	bidder := &mockBidder{errs: []error{errors.New("delegate")}}
	constrained := BuildInfoAwareBidder(bidder, siteBannerInfo())

	_, errs := constrained.MakeRequests(&openrtb2.BidRequest{
		Imp: []openrtb2.Imp{{ID: "imp-0", Banner: &openrtb2.Banner{}}},
	}, &ExtraRequestInfo{})

	assert.Equal(t, []error{errors.New("delegate")}, errs)
}

type mockBidder struct {
	gotRequest *openrtb2.BidRequest
	requests   []*RequestData
	errs       []error
	bidErrs    []error
}

func (m *mockBidder) MakeRequests(request *openrtb2.BidRequest, reqInfo *ExtraRequestInfo) ([]*RequestData, []error) {
	m.gotRequest = request
	return m.requests, m.errs
}

func (m *mockBidder) MakeBids(internalRequest *openrtb2.BidRequest, externalRequest *RequestData, response *ResponseData) (*BidderResponse, []error) {
	if len(m.bidErrs) > 0 {
		return nil, m.bidErrs
	}
	var echoed []string
	if err := json.Unmarshal(response.Body, &echoed); err != nil {
		return nil, []error{err}
	}
	bidResponse := NewBidderResponseWithBidsCapacity(len(echoed))
	for _, id := range echoed {
		bidResponse.Bids = append(bidResponse.Bids, &TypedBid{
			Bid:     &openrtb2.Bid{ImpID: id},
			BidType: openrtb_ext.BidTypeBanner,
		})
	}
	return bidResponse, nil
}
