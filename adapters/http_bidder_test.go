package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoTransport(t *testing.T) {
	req := &RequestData{Method: http.MethodPost, Uri: "https://example.com", Body: []byte(`{"bids":[]}`)}

	resp, err := EchoTransport{}.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, req.Body, resp.Body)
}

func TestEchoTransportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EchoTransport{}.Do(ctx, &RequestData{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json;charset=utf-8", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
		w.Write(body)
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Add("Content-Type", "application/json;charset=utf-8")
	req := &RequestData{Method: http.MethodPost, Uri: server.URL, Body: []byte(`["a"]`), Headers: headers}

	resp, err := HTTPTransport{Client: server.Client()}.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, `["a"]`, string(resp.Body))
}

func TestHTTPTransportTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := HTTPTransport{Client: server.Client()}.Do(ctx, &RequestData{Method: http.MethodPost, Uri: server.URL})
	assert.Error(t, err)
}

func TestRunBidderSingleRequest(t *testing.T) {
	bidder := &mockBidder{
		requests: []*RequestData{{Method: http.MethodPost, Uri: "https://example.com", Body: []byte(`["imp-1","imp-2"]`)}},
	}

	seatBid, errs := RunBidder(context.Background(), bidder, EchoTransport{}, &openrtb2.BidRequest{}, &ExtraRequestInfo{})

	assert.Empty(t, errs)
	require.NotNil(t, seatBid)
	assert.Equal(t, "USD", seatBid.Currency)
	require.Len(t, seatBid.Bids, 2)
	assert.Equal(t, "imp-1", seatBid.Bids[0].Bid.ImpID)
	assert.Equal(t, "imp-2", seatBid.Bids[1].Bid.ImpID)
	assert.Equal(t, []*HttpCall{{
		Uri:          "https://example.com",
		RequestBody:  `["imp-1","imp-2"]`,
		ResponseBody: `["imp-1","imp-2"]`,
		Status:       http.StatusOK,
	}}, seatBid.HttpCalls)
}

func TestRunBidderMultipleRequests(t *testing.T) {
	bidder := &mockBidder{
		requests: []*RequestData{
			{Uri: "https://a.example.com", Body: []byte(`["imp-1"]`)},
			{Uri: "https://b.example.com", Body: []byte(`["imp-2"]`)},
		},
	}

	seatBid, errs := RunBidder(context.Background(), bidder, EchoTransport{}, &openrtb2.BidRequest{}, &ExtraRequestInfo{})

	assert.Empty(t, errs)
	require.NotNil(t, seatBid)
	impIDs := make([]string, 0, len(seatBid.Bids))
	for _, bid := range seatBid.Bids {
		impIDs = append(impIDs, bid.Bid.ImpID)
	}
	assert.ElementsMatch(t, []string{"imp-1", "imp-2"}, impIDs)
	assert.Len(t, seatBid.HttpCalls, 2)
}

func TestRunBidderNoRequests(t *testing.T) {
	bidder := &mockBidder{errs: []error{errors.New("no valid imps")}}

	seatBid, errs := RunBidder(context.Background(), bidder, EchoTransport{}, &openrtb2.BidRequest{}, &ExtraRequestInfo{})

	assert.Nil(t, seatBid)
	assert.Equal(t, []error{errors.New("no valid imps")}, errs)
}

func TestRunBidderTransportError(t *testing.T) {
	bidder := &mockBidder{requests: []*RequestData{{Uri: "https://example.com", Body: []byte(`[]`)}}}

	seatBid, errs := RunBidder(context.Background(), bidder, failingTransport{}, &openrtb2.BidRequest{}, &ExtraRequestInfo{})

	require.NotNil(t, seatBid)
	assert.Empty(t, seatBid.Bids)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "request to https://example.com failed: boom")
	assert.Equal(t, []*HttpCall{{Uri: "https://example.com", RequestBody: "[]"}}, seatBid.HttpCalls)
}

func TestRunBidderMakeBidsErrors(t *testing.T) {
	bidder := &mockBidder{
		requests: []*RequestData{{Uri: "https://example.com", Body: []byte(`[]`)}},
		bidErrs:  []error{errors.New("bad echo")},
	}

	seatBid, errs := RunBidder(context.Background(), bidder, EchoTransport{}, &openrtb2.BidRequest{}, &ExtraRequestInfo{})

	require.NotNil(t, seatBid)
	assert.Empty(t, seatBid.Bids)
	assert.Equal(t, []error{errors.New("bad echo")}, errs)
}

type failingTransport struct{}

func (failingTransport) Do(ctx context.Context, req *RequestData) (*ResponseData, error) {
	return nil, errors.New("boom")
}

func TestRunBidderTimeout(t *testing.T) {
	bidder := &mockBidder{requests: []*RequestData{{Uri: "https://example.com", Body: []byte(`[]`)}}}

	seatBid, errs := RunBidder(context.Background(), bidder, deadlineTransport{}, &openrtb2.BidRequest{}, &ExtraRequestInfo{})

	require.NotNil(t, seatBid)
	require.Len(t, errs, 1)
	assert.IsType(t, &errortypes.Timeout{}, errs[0])
	assert.EqualError(t, errs[0], "request to https://example.com timed out")
}

type deadlineTransport struct{}

func (deadlineTransport) Do(ctx context.Context, req *RequestData) (*ResponseData, error) {
	return nil, context.DeadlineExceeded
}
