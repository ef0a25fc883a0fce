// Package preview serves POST /passback/preview/:bidderName. It runs one bidder against a single
// OpenRTB request and reports the bids it would place, including the passback markup.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/exchange"
	"github.com/predictinteractive/predict-server/metrics"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/util/jsonutil"
)

const (
	entryPoint     = "preview"
	maxRequestSize = 512 * 1024
)

// Response is the body written for every request the endpoint accepts.
type Response struct {
	ID        string               `json:"id"`
	Bidder    string               `json:"bidder"`
	Currency  string               `json:"cur,omitempty"`
	Bids      []Bid                `json:"bids"`
	Errors    []Message            `json:"errors,omitempty"`
	Warnings  []Message            `json:"warnings,omitempty"`
	HttpCalls []*adapters.HttpCall `json:"httpcalls,omitempty"`
}

type Bid struct {
	Bid     *openrtb2.Bid       `json:"bid"`
	BidType openrtb_ext.BidType `json:"type"`
}

type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type endpointDeps struct {
	bidders         map[openrtb_ext.BidderName]exchange.AdaptedBidder
	disabled        map[string]string
	paramsValidator openrtb_ext.BidderParamValidator
	metricsEngine   metrics.MetricsEngine
	timeout         time.Duration
}

// NewEndpoint builds the preview handler. Disabled bidders answer with their warning message.
func NewEndpoint(
	bidders map[openrtb_ext.BidderName]exchange.AdaptedBidder,
	disabled map[string]string,
	paramsValidator openrtb_ext.BidderParamValidator,
	me metrics.MetricsEngine,
	timeout time.Duration,
) (httprouter.Handle, error) {
	if bidders == nil || paramsValidator == nil || me == nil {
		return nil, errors.New("NewEndpoint requires non-nil arguments.")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("preview timeout must be positive. Got %v", timeout)
	}

	deps := &endpointDeps{
		bidders:         bidders,
		disabled:        disabled,
		paramsValidator: paramsValidator,
		metricsEngine:   me,
		timeout:         timeout,
	}
	return deps.handle, nil
}

func (deps *endpointDeps) handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start := time.Now()
	labels := metrics.Labels{
		RType:         metrics.ReqTypePreview,
		RequestStatus: metrics.RequestStatusOK,
	}
	defer func() {
		deps.metricsEngine.RecordRequest(labels)
		deps.metricsEngine.RecordRequestTime(labels, time.Since(start))
	}()

	bidderParam := ps.ByName("bidderName")
	bidderName, found := openrtb_ext.NormalizeBidderName(bidderParam)
	if !found {
		labels.RequestStatus = metrics.RequestStatusNotFound
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown bidder: %s", bidderParam))
		return
	}
	if msg, disabled := deps.disabled[string(bidderName)]; disabled {
		labels.RequestStatus = metrics.RequestStatusBadInput
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	bidder, ok := deps.bidders[bidderName]
	if !ok {
		labels.RequestStatus = metrics.RequestStatusNotFound
		writeError(w, http.StatusNotFound, fmt.Sprintf("bidder %s is not configured on this instance", bidderName))
		return
	}

	request, err := deps.parseRequest(r, bidderName)
	if err != nil {
		labels.RequestStatus = metrics.RequestStatusBadInput
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), deps.requestTimeout(request))
	defer cancel()

	reqInfo := adapters.NewExtraRequestInfo(entryPoint)
	seatBid, errs := bidder.RequestBid(ctx, request, &reqInfo)

	response := buildResponse(request.ID, bidderName, seatBid, errs)
	body, err := jsonutil.Marshal(response)
	if err != nil {
		labels.RequestStatus = metrics.RequestStatusErr
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		glog.Errorf("error writing response to /passback/preview/%s: %v", bidderName, err)
	}
}

func (deps *endpointDeps) parseRequest(r *http.Request, bidderName openrtb_ext.BidderName) (*openrtb2.BidRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %v", err)
	}
	if len(body) > maxRequestSize {
		return nil, fmt.Errorf("request size exceeded max size of %d bytes", maxRequestSize)
	}

	request := &openrtb2.BidRequest{}
	if err := jsonutil.UnmarshalValid(body, request); err != nil {
		return nil, fmt.Errorf("invalid request format: %v", err)
	}
	if len(request.Imp) == 0 {
		return nil, errors.New("request.imp must contain at least one element")
	}

	for i, imp := range request.Imp {
		params, _, _, err := jsonparser.Get(imp.Ext, "bidder")
		if err != nil {
			return nil, fmt.Errorf("request.imp[%d].ext.bidder is required", i)
		}
		if err := deps.paramsValidator.Validate(bidderName, params); err != nil {
			return nil, fmt.Errorf("request.imp[%d].ext.bidder failed validation.\n%v", i, err)
		}
	}
	return request, nil
}

func (deps *endpointDeps) requestTimeout(request *openrtb2.BidRequest) time.Duration {
	if request.TMax > 0 {
		tmax := time.Duration(request.TMax) * time.Millisecond
		if tmax < deps.timeout {
			return tmax
		}
	}
	return deps.timeout
}

func buildResponse(id string, bidderName openrtb_ext.BidderName, seatBid *adapters.SeatBid, errs []error) *Response {
	response := &Response{
		ID:     id,
		Bidder: string(bidderName),
		Bids:   []Bid{},
	}

	if seatBid != nil {
		response.Currency = seatBid.Currency
		response.HttpCalls = seatBid.HttpCalls
		for _, typedBid := range seatBid.Bids {
			response.Bids = append(response.Bids, Bid{Bid: typedBid.Bid, BidType: typedBid.BidType})
		}
	}

	response.Errors = toMessages(errortypes.FatalOnly(errs))
	response.Warnings = toMessages(errortypes.WarningOnly(errs))
	return response
}

func toMessages(errs []error) []Message {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]Message, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, Message{
			Code:    errortypes.ReadCode(err),
			Message: err.Error(),
		})
	}
	return messages
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if _, err := io.WriteString(w, msg); err != nil {
		glog.Errorf("error writing preview error response: %v", err)
	}
}
