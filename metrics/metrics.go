package metrics

import (
	"time"

	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/openrtb_ext"
)

// Labels defines the labels that can be attached to the preview endpoint metrics.
type Labels struct {
	RType         RequestType
	RequestStatus RequestStatus
}

// AdapterLabels defines the labels that can be attached to the adapter metrics.
type AdapterLabels struct {
	Adapter       openrtb_ext.BidderName
	AdapterBids   AdapterBid
	AdapterErrors map[AdapterError]struct{}
}

// PassbackLabels defines the labels attached to a creative choice made by an adapter.
type PassbackLabels struct {
	Adapter     openrtb_ext.BidderName
	Integration string
}

// RequestType : Request type enumeration
type RequestType string

// The request types (endpoints)
const (
	ReqTypePreview RequestType = "preview"
)

func RequestTypes() []RequestType {
	return []RequestType{
		ReqTypePreview,
	}
}

// RequestStatus : The request return status
type RequestStatus string

// The request return statuses
const (
	RequestStatusOK       RequestStatus = "ok"
	RequestStatusBadInput RequestStatus = "badinput"
	RequestStatusNotFound RequestStatus = "notfound"
	RequestStatusErr      RequestStatus = "err"
)

func RequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusOK,
		RequestStatusBadInput,
		RequestStatusNotFound,
		RequestStatusErr,
	}
}

// AdapterBid : Whether or not the adapter returned bids
type AdapterBid string

// Adapter bid response status.
const (
	AdapterBidPresent AdapterBid = "bid"
	AdapterBidNone    AdapterBid = "nobid"
)

func AdapterBids() []AdapterBid {
	return []AdapterBid{
		AdapterBidPresent,
		AdapterBidNone,
	}
}

// AdapterError : Errors which may have occurred during the adapter's execution
type AdapterError string

// Adapter execution status
const (
	AdapterErrorBadInput            AdapterError = "badinput"
	AdapterErrorBadServerResponse   AdapterError = "badserverresponse"
	AdapterErrorTimeout             AdapterError = "timeout"
	AdapterErrorFailedToRequestBids AdapterError = "failedtorequestbid"
	AdapterErrorUnknown             AdapterError = "unknown_error"
)

func AdapterErrors() []AdapterError {
	return []AdapterError{
		AdapterErrorBadInput,
		AdapterErrorBadServerResponse,
		AdapterErrorTimeout,
		AdapterErrorFailedToRequestBids,
		AdapterErrorUnknown,
	}
}

// PassbackDefault labels bids carrying no partner tag: the Predict house ad and MediaForce.
const PassbackDefault = "default"

// PassbackLabel maps the passback_integration tag of a bid to its metric label.
func PassbackLabel(integration string) string {
	if integration == "" {
		return PassbackDefault
	}
	return integration
}

// ClassifyErrors buckets adapter errors by type. Warnings are not counted.
func ClassifyErrors(errs []error) map[AdapterError]struct{} {
	classified := make(map[AdapterError]struct{})
	for _, err := range errs {
		if errortypes.IsWarning(err) {
			continue
		}
		classified[classifyError(err)] = struct{}{}
	}
	return classified
}

func classifyError(err error) AdapterError {
	switch errortypes.ReadCode(err) {
	case errortypes.BadInputErrorCode, errortypes.InvalidImpSizeErrorCode:
		return AdapterErrorBadInput
	case errortypes.BadServerResponseErrorCode:
		return AdapterErrorBadServerResponse
	case errortypes.FailedToRequestBidsErrorCode:
		return AdapterErrorFailedToRequestBids
	case errortypes.TimeoutErrorCode:
		return AdapterErrorTimeout
	default:
		return AdapterErrorUnknown
	}
}

// MetricsEngine is a generic interface to record metrics into the desired backend
// The connection metrics fire off per TCP connection on the main port. RecordRequest and
// RecordRequestTime fire off once per incoming request, so total metrics will equal the total
// number of incoming requests. The rest fire off per bidder invoked in the request.
type MetricsEngine interface {
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
	RecordRequest(labels Labels)
	RecordRequestTime(labels Labels, length time.Duration)
	RecordAdapterRequest(labels AdapterLabels)
	RecordAdapterTime(labels AdapterLabels, length time.Duration)
	RecordAdapterPrice(labels AdapterLabels, cpm float64)
	RecordPassbackSelection(labels PassbackLabels)
}
