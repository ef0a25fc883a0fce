package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/metrics"
	"github.com/predictinteractive/predict-server/openrtb_ext"
)

// AdaptedBidder defines the contract needed to participate in a preview.
//
// This interface exists to make testing easy. The production implementation runs an adapters.Bidder
// through its Transport and records the outcome.
type AdaptedBidder interface {
	// RequestBid fetches bids for the given request.
	//
	// The returned SeatBid carries every bid and HTTP call the bidder produced. It is nil when the bidder
	// built no outgoing request. The errors should contain a list of errors which explain why this bidder's
	// bids were "bad" or absent, including warnings.
	RequestBid(ctx context.Context, request *openrtb2.BidRequest, reqInfo *adapters.ExtraRequestInfo) (*adapters.SeatBid, []error)
}

// BidderAdapter is the production AdaptedBidder.
type BidderAdapter struct {
	Bidder     adapters.Bidder
	BidderName openrtb_ext.BidderName
	transport  adapters.Transport
	me         metrics.MetricsEngine
}

// AdaptBidder converts an adapters.Bidder into an exchange.AdaptedBidder.
func AdaptBidder(bidder adapters.Bidder, transport adapters.Transport, me metrics.MetricsEngine, name openrtb_ext.BidderName) AdaptedBidder {
	return &BidderAdapter{
		Bidder:     bidder,
		BidderName: name,
		transport:  transport,
		me:         me,
	}
}

func (bidder *BidderAdapter) RequestBid(ctx context.Context, request *openrtb2.BidRequest, reqInfo *adapters.ExtraRequestInfo) (*adapters.SeatBid, []error) {
	start := time.Now()
	seatBid, errs := adapters.RunBidder(ctx, bidder.Bidder, bidder.transport, request, reqInfo)

	labels := metrics.AdapterLabels{
		Adapter:       bidder.BidderName,
		AdapterBids:   metrics.AdapterBidNone,
		AdapterErrors: metrics.ClassifyErrors(errs),
	}
	if seatBid != nil && len(seatBid.Bids) > 0 {
		labels.AdapterBids = metrics.AdapterBidPresent
	}
	bidder.me.RecordAdapterRequest(labels)
	bidder.me.RecordAdapterTime(labels, time.Since(start))

	if seatBid != nil {
		for _, typedBid := range seatBid.Bids {
			bidder.me.RecordAdapterPrice(labels, typedBid.Bid.Price)
			bidder.me.RecordPassbackSelection(metrics.PassbackLabels{
				Adapter:     bidder.BidderName,
				Integration: passbackIntegration(typedBid.Bid.Ext),
			})
		}
	}

	return seatBid, errs
}

func passbackIntegration(ext json.RawMessage) string {
	integration, err := jsonparser.GetString(ext, "passback_integration")
	if err != nil {
		return ""
	}
	return integration
}
