package predict

import (
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/util/jsonutil"
)

// TTL is the number of seconds a Predict bid stays valid.
const TTL int64 = 60

// BidResult is the bid produced for one slot. Exactly one of Ad and AdURL is set.
type BidResult struct {
	RequestID           string
	CPM                 float64
	Width               int64
	Height              int64
	TTL                 int64
	CreativeID          string
	NetRevenue          bool
	Currency            string
	Ad                  string
	AdURL               string
	PassbackIntegration string
}

// TypedBid converts the result into a banner bid. The ad markup goes to adm and the ad URL to nurl.
func (r *BidResult) TypedBid() (*adapters.TypedBid, error) {
	ext, err := jsonutil.Marshal(openrtb_ext.ExtBidPredict{
		PassbackIntegration: r.PassbackIntegration,
		NetRevenue:          r.NetRevenue,
	})
	if err != nil {
		return nil, err
	}

	return &adapters.TypedBid{
		Bid: &openrtb2.Bid{
			ID:    r.RequestID,
			ImpID: r.RequestID,
			Price: r.CPM,
			NURL:  r.AdURL,
			AdM:   r.Ad,
			CrID:  r.CreativeID,
			W:     r.Width,
			H:     r.Height,
			Exp:   r.TTL,
			MType: openrtb2.MarkupBanner,
			Ext:   ext,
		},
		BidType: openrtb_ext.BidTypeBanner,
	}, nil
}
