package exchange

import (
	"fmt"

	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/metrics"
	"github.com/predictinteractive/predict-server/openrtb_ext"
)

// BuildAdapters builds every enabled bidder and wraps it so that each call is measured. Builder
// failures are returned together and no bidder map is produced.
func BuildAdapters(cfg *config.Configuration, transport adapters.Transport, me metrics.MetricsEngine) (map[openrtb_ext.BidderName]AdaptedBidder, []error) {
	bidders, errs := buildBidders(cfg.BidderInfos, newAdapterBuilders(), cfg.Server())

	if len(errs) > 0 {
		return nil, errs
	}

	exchangeBidders := make(map[openrtb_ext.BidderName]AdaptedBidder, len(bidders))
	for bidderName, bidder := range bidders {
		exchangeBidders[bidderName] = AdaptBidder(bidder, transport, me, bidderName)
	}
	return exchangeBidders, nil
}

func buildBidders(infos config.BidderInfos, builders map[openrtb_ext.BidderName]adapters.Builder, server config.Server) (map[openrtb_ext.BidderName]adapters.Bidder, []error) {
	bidders := make(map[openrtb_ext.BidderName]adapters.Bidder)
	var errs []error

	for bidder, info := range infos {
		bidderName, bidderNameFound := openrtb_ext.NormalizeBidderName(bidder)
		if !bidderNameFound {
			errs = append(errs, fmt.Errorf("%v: unknown bidder", bidder))
			continue
		}

		builder, builderFound := builders[bidderName]
		if !builderFound {
			errs = append(errs, fmt.Errorf("%v: builder not registered", bidder))
			continue
		}

		if info.IsEnabled() {
			bidderInstance, builderErr := builder(bidderName, info.AdapterConfig(), server)

			if builderErr != nil {
				errs = append(errs, fmt.Errorf("%v: %v", bidder, builderErr))
				continue
			}
			bidders[bidderName] = adapters.BuildInfoAwareBidder(bidderInstance, info)
		}
	}
	return bidders, errs
}

// GetActiveBidders returns a map of all active bidder names.
func GetActiveBidders(infos config.BidderInfos) map[string]openrtb_ext.BidderName {
	activeBidders := make(map[string]openrtb_ext.BidderName)

	for name, info := range infos {
		if info.IsEnabled() {
			activeBidders[name] = openrtb_ext.BidderName(name)
		}
	}

	return activeBidders
}

// GetDisabledBidderWarningMessages returns the message the preview endpoint answers with for
// each bidder turned off on this instance.
func GetDisabledBidderWarningMessages(infos config.BidderInfos) map[string]string {
	disabledBidders := make(map[string]string)

	for name, info := range infos {
		if info.Disabled {
			msg := fmt.Sprintf(`Bidder "%s" has been disabled on this instance of Predict Server. Please work with the host to enable this bidder again.`, name)
			disabledBidders[name] = msg
		}
	}

	return disabledBidders
}
