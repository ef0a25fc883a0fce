package info

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/predictinteractive/predict-server/util/jsonutil"
)

const (
	statusActive   = "ACTIVE"
	statusDisabled = "DISABLED"
)

var invalidEnabledOnlyMsg = []byte(`Invalid value for 'enabledonly' query param, must be of boolean type`)

// NewBiddersEndpoint builds a handler for the /info/bidders endpoint.
func NewBiddersEndpoint(bidders config.BidderInfos) httprouter.Handle {
	responseAll, err := prepareBiddersResponseAll(bidders)
	if err != nil {
		glog.Fatalf("error creating /info/bidders endpoint all bidders response: %v", err)
	}

	responseEnabledOnly, err := prepareBiddersResponseEnabledOnly(bidders)
	if err != nil {
		glog.Fatalf("error creating /info/bidders endpoint enabled only response: %v", err)
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		enabledOnly, err := readEnabledOnly(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write(invalidEnabledOnlyMsg)
			return
		}

		if enabledOnly {
			writeResponse(w, responseEnabledOnly)
		} else {
			writeResponse(w, responseAll)
		}
	}
}

func readEnabledOnly(r *http.Request) (bool, error) {
	q := r.URL.Query()

	v, exists := q["enabledonly"]
	if !exists || len(v) == 0 {
		// if the enabledOnly query parameter is not specified, default to false to match
		// previous behavior of returning all adapters regardless of their enabled status.
		return false, nil
	}

	return strconv.ParseBool(strings.ToLower(v[0]))
}

func prepareBiddersResponseAll(bidders config.BidderInfos) ([]byte, error) {
	bidderNames := make([]string, 0, len(bidders))

	for name := range bidders {
		bidderNames = append(bidderNames, name)
	}

	sort.Strings(bidderNames)
	return jsonutil.Marshal(bidderNames)
}

func prepareBiddersResponseEnabledOnly(bidders config.BidderInfos) ([]byte, error) {
	bidderNames := make([]string, 0, len(bidders))

	for name, info := range bidders {
		if info.IsEnabled() {
			bidderNames = append(bidderNames, name)
		}
	}

	sort.Strings(bidderNames)
	return jsonutil.Marshal(bidderNames)
}

// NewBidderDetailsEndpoint builds a handler for the /info/bidders/<bidder> endpoint.
func NewBidderDetailsEndpoint(bidders config.BidderInfos) httprouter.Handle {
	responses, err := prepareBidderDetailsResponse(bidders)
	if err != nil {
		glog.Fatalf("error creating /info/bidders/<bidder> endpoint response: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		bidder := ps.ByName("bidderName")

		if name, found := openrtb_ext.NormalizeBidderName(bidder); found {
			if response, ok := responses[string(name)]; ok {
				writeResponse(w, response)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func prepareBidderDetailsResponse(bidders config.BidderInfos) (map[string][]byte, error) {
	details := make(map[string][]byte, len(bidders))

	for bidderName, bidderInfo := range bidders {
		response, err := jsonutil.Marshal(mapDetailFromConfig(bidderInfo))
		if err != nil {
			return nil, err
		}
		details[bidderName] = response
	}

	return details, nil
}

type bidderDetail struct {
	Status       string        `json:"status"`
	UsesHTTPS    *bool         `json:"usesHttps,omitempty"`
	Maintainer   *maintainer   `json:"maintainer,omitempty"`
	Capabilities *capabilities `json:"capabilities,omitempty"`
}

type maintainer struct {
	Email string `json:"email,omitempty"`
}

type capabilities struct {
	App  *platform `json:"app,omitempty"`
	Site *platform `json:"site,omitempty"`
}

type platform struct {
	MediaTypes []string `json:"mediaTypes,omitempty"`
}

func mapDetailFromConfig(c config.BidderInfo) bidderDetail {
	var bidderDetail bidderDetail

	if c.Maintainer != nil {
		bidderDetail.Maintainer = &maintainer{
			Email: c.Maintainer.Email,
		}
	}

	if c.IsEnabled() {
		bidderDetail.Status = statusActive

		usesHTTPS := strings.HasPrefix(strings.ToLower(c.Endpoint), "https://")
		bidderDetail.UsesHTTPS = &usesHTTPS

		if c.Capabilities != nil {
			bidderDetail.Capabilities = &capabilities{}

			if c.Capabilities.App != nil {
				bidderDetail.Capabilities.App = &platform{
					MediaTypes: mapMediaTypes(c.Capabilities.App.MediaTypes),
				}
			}

			if c.Capabilities.Site != nil {
				bidderDetail.Capabilities.Site = &platform{
					MediaTypes: mapMediaTypes(c.Capabilities.Site.MediaTypes),
				}
			}
		}
	} else {
		bidderDetail.Status = statusDisabled
	}

	return bidderDetail
}

func mapMediaTypes(m []openrtb_ext.BidType) []string {
	mediaTypes := make([]string, len(m))

	for i, v := range m {
		mediaTypes[i] = string(v)
	}

	return mediaTypes
}

func writeResponse(w http.ResponseWriter, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		glog.Errorf("error writing response to /info/bidders: %v", err)
	}
}
