package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/errortypes"
	"golang.org/x/net/context/ctxhttp"
)

// Transport delivers one RequestData and reports what came back.
type Transport interface {
	Do(ctx context.Context, req *RequestData) (*ResponseData, error)
}

// EchoTransport never leaves the process. It answers every request with a 200 whose body is
// the request body, which is exactly what the Predict adapters consume when they build bids.
type EchoTransport struct{}

func (EchoTransport) Do(ctx context.Context, req *RequestData) (*ResponseData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ResponseData{
		StatusCode: http.StatusOK,
		Body:       req.Body,
		Headers:    http.Header{"Content-Type": []string{"application/json;charset=utf-8"}},
	}, nil
}

// HTTPTransport sends the request over the network.
type HTTPTransport struct {
	Client *http.Client
}

func (t HTTPTransport) Do(ctx context.Context, req *RequestData) (*ResponseData, error) {
	httpReq, err := http.NewRequest(req.Method, req.Uri, bytes.NewBuffer(req.Body))
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Headers

	httpResp, err := ctxhttp.Do(ctx, t.Client, httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &ResponseData{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// HttpCall is the debug record of one round trip.
type HttpCall struct {
	Uri          string `json:"uri"`
	RequestBody  string `json:"requestbody"`
	ResponseBody string `json:"responsebody,omitempty"`
	Status       int    `json:"status,omitempty"`
}

// SeatBid is everything one bidder produced for one request.
type SeatBid struct {
	Currency  string
	Bids      []*TypedBid
	HttpCalls []*HttpCall
}

// RunBidder drives a Bidder through MakeRequests, the transport and MakeBids.
func RunBidder(ctx context.Context, bidder Bidder, transport Transport, request *openrtb2.BidRequest, reqInfo *ExtraRequestInfo) (*SeatBid, []error) {
	reqData, errs := bidder.MakeRequests(request, reqInfo)

	if len(reqData) == 0 {
		return nil, errs
	}

	// Make any HTTP requests in parallel.
	// If the bidder only needs to make one, save some cycles by just using the current one.
	responseChannel := make(chan *httpCallInfo, len(reqData))
	if len(reqData) == 1 {
		responseChannel <- doRequest(ctx, transport, reqData[0])
	} else {
		for _, oneReqData := range reqData {
			go func(data *RequestData) {
				responseChannel <- doRequest(ctx, transport, data)
			}(oneReqData)
		}
	}

	seatBid := &SeatBid{
		Currency:  "USD",
		Bids:      make([]*TypedBid, 0, len(reqData)),
		HttpCalls: make([]*HttpCall, 0, len(reqData)),
	}

	// If the bidder made multiple requests, we still want them to enter as many bids as possible...
	// even if the timeout occurs sometime halfway through.
	for i := 0; i < len(reqData); i++ {
		httpInfo := <-responseChannel
		seatBid.HttpCalls = append(seatBid.HttpCalls, makeHttpCall(httpInfo))

		if httpInfo.err != nil {
			errs = append(errs, httpInfo.err)
			continue
		}

		bidResponse, moreErrs := bidder.MakeBids(request, httpInfo.request, httpInfo.response)
		errs = append(errs, moreErrs...)
		if bidResponse == nil {
			continue
		}
		if bidResponse.Currency != "" {
			seatBid.Currency = bidResponse.Currency
		}
		seatBid.Bids = append(seatBid.Bids, bidResponse.Bids...)
	}

	return seatBid, errs
}

func makeHttpCall(httpInfo *httpCallInfo) *HttpCall {
	call := &HttpCall{
		Uri:         httpInfo.request.Uri,
		RequestBody: string(httpInfo.request.Body),
	}
	if httpInfo.err == nil {
		call.ResponseBody = string(httpInfo.response.Body)
		call.Status = httpInfo.response.StatusCode
	}
	return call
}

func doRequest(ctx context.Context, transport Transport, req *RequestData) *httpCallInfo {
	resp, err := transport.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &errortypes.Timeout{Message: fmt.Sprintf("request to %s timed out", req.Uri)}
		} else {
			err = fmt.Errorf("request to %s failed: %v", req.Uri, err)
		}
		return &httpCallInfo{
			request: req,
			err:     err,
		}
	}
	return &httpCallInfo{
		request:  req,
		response: resp,
	}
}

type httpCallInfo struct {
	request  *RequestData
	response *ResponseData
	err      error
}
