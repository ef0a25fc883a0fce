package info

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/stretchr/testify/assert"
)

func testBidderInfos() config.BidderInfos {
	return config.BidderInfos{
		"predict": {
			Endpoint:   "https://content.predictinteractive.com/l/n/predictBid.php",
			Maintainer: &config.MaintainerInfo{Email: "dev@predictinteractive.com"},
			Capabilities: &config.CapabilitiesInfo{
				Site: &config.PlatformInfo{MediaTypes: []openrtb_ext.BidType{openrtb_ext.BidTypeBanner}},
			},
		},
		"passback_mediaforce": {
			Disabled:   true,
			Endpoint:   "https://content.predictinteractive.com/l/n/predictBid.php?bidder=predictMediaForce",
			Maintainer: &config.MaintainerInfo{Email: "dev@predictinteractive.com"},
		},
	}
}

func TestBiddersEndpoint(t *testing.T) {
	testCases := []struct {
		description    string
		url            string
		expectedStatus int
		expectedBody   string
	}{
		{
			description:    "all",
			url:            "/info/bidders",
			expectedStatus: http.StatusOK,
			expectedBody:   `["passback_mediaforce","predict"]`,
		},
		{
			description:    "enabled-only",
			url:            "/info/bidders?enabledonly=TRUE",
			expectedStatus: http.StatusOK,
			expectedBody:   `["predict"]`,
		},
		{
			description:    "enabled-only-false",
			url:            "/info/bidders?enabledonly=false",
			expectedStatus: http.StatusOK,
			expectedBody:   `["passback_mediaforce","predict"]`,
		},
		{
			description:    "invalid-enabled-only",
			url:            "/info/bidders?enabledonly=maybe",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `Invalid value for 'enabledonly' query param, must be of boolean type`,
		},
	}

	endpoint := NewBiddersEndpoint(testBidderInfos())

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			w := httptest.NewRecorder()
			endpoint(w, httptest.NewRequest(http.MethodGet, test.url, nil), nil)

			body, _ := io.ReadAll(w.Result().Body)
			assert.Equal(t, test.expectedStatus, w.Code)
			assert.Equal(t, test.expectedBody, string(body))
		})
	}
}

func TestBidderDetailsEndpoint(t *testing.T) {
	testCases := []struct {
		description    string
		bidder         string
		expectedStatus int
		expectedBody   string
	}{
		{
			description:    "active",
			bidder:         "predict",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ACTIVE","usesHttps":true,"maintainer":{"email":"dev@predictinteractive.com"},"capabilities":{"site":{"mediaTypes":["banner"]}}}`,
		},
		{
			description:    "case-insensitive",
			bidder:         "PREDICT",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ACTIVE","usesHttps":true,"maintainer":{"email":"dev@predictinteractive.com"},"capabilities":{"site":{"mediaTypes":["banner"]}}}`,
		},
		{
			description:    "disabled",
			bidder:         "passback_mediaforce",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"DISABLED","maintainer":{"email":"dev@predictinteractive.com"}}`,
		},
		{
			description:    "unknown",
			bidder:         "appnexus",
			expectedStatus: http.StatusNotFound,
		},
	}

	endpoint := NewBidderDetailsEndpoint(testBidderInfos())

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			w := httptest.NewRecorder()
			params := httprouter.Params{{Key: "bidderName", Value: test.bidder}}
			endpoint(w, httptest.NewRequest(http.MethodGet, "/info/bidders/"+test.bidder, nil), params)

			assert.Equal(t, test.expectedStatus, w.Code)
			if test.expectedBody != "" {
				assert.JSONEq(t, test.expectedBody, w.Body.String())
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}
