package openrtb_ext

import (
	"fmt"
)

// BidType describes the allowed values for bidresponse.seatbid.bid[i].ext.prebid.type
type BidType string

const (
	BidTypeBanner BidType = "banner"
	BidTypeVideo  BidType = "video"
	BidTypeAudio  BidType = "audio"
	BidTypeNative BidType = "native"
)

func ParseBidType(bidType string) (BidType, error) {
	switch bidType {
	case "banner":
		return BidTypeBanner, nil
	case "video":
		return BidTypeVideo, nil
	case "audio":
		return BidTypeAudio, nil
	case "native":
		return BidTypeNative, nil
	default:
		return "", fmt.Errorf("invalid BidType: %s", bidType)
	}
}

// ExtBidPredict defines the contract for bidresponse.seatbid.bid[i].ext written by the Predict adapters.
type ExtBidPredict struct {
	// PassbackIntegration names the partner which filled the slot. It matches the lowercased ad
	// provider name reported to analytics. Empty for house ads and MediaForce.
	PassbackIntegration string `json:"passback_integration,omitempty"`
	NetRevenue          bool   `json:"net_revenue"`
}
