package router

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/endpoints"
	infoEndpoints "github.com/predictinteractive/predict-server/endpoints/info"
	"github.com/predictinteractive/predict-server/endpoints/preview"
	"github.com/predictinteractive/predict-server/errortypes"
	"github.com/predictinteractive/predict-server/exchange"
	metricsConf "github.com/predictinteractive/predict-server/metrics/config"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/rs/cors"
)

// NewJsonDirectoryServer is used to serve .json files from a directory as a single blob. For example,
// given a directory containing the files "a.json" and "b.json", this returns a Handle which serves JSON like:
//
//	{
//	  "a": { ... content from the file a.json ... },
//	  "b": { ... content from the file b.json ... }
//	}
//
// This function stores the file contents in memory, and should not be used on large directories.
// If the root directory, or any of the files in it, cannot be read, then the program will exit.
func NewJsonDirectoryServer(schemaDirectory string, validator openrtb_ext.BidderParamValidator) httprouter.Handle {
	// Slurp the files into memory first, since they're small and it minimizes request latency.
	files, err := os.ReadDir(schemaDirectory)
	if err != nil {
		glog.Fatalf("Failed to read directory %s: %v", schemaDirectory, err)
	}

	data := make(map[string]json.RawMessage, len(files))
	for _, file := range files {
		bidder := strings.TrimSuffix(file.Name(), ".json")
		bidderName, isValid := openrtb_ext.NormalizeBidderName(bidder)
		if !isValid {
			glog.Fatalf("Schema exists for an unknown bidder: %s", bidder)
		}
		data[bidder] = json.RawMessage(validator.Schema(bidderName))
	}

	response, err := json.Marshal(data)
	if err != nil {
		glog.Fatalf("Failed to marshal bidder param JSON-schema: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Add("Content-Type", "application/json")
		w.Write(response)
	}
}

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

type Router struct {
	*httprouter.Router
	MetricsEngine   *metricsConf.DetailedMetricsEngine
	ParamsValidator openrtb_ext.BidderParamValidator
}

// New builds every bidder named in cfg.BidderInfos and registers the public endpoints. The version and
// revision are reported by GET /version.
func New(cfg *config.Configuration, version, revision string) (r *Router, err error) {
	r = &Router{
		Router: httprouter.New(),
	}

	r.ParamsValidator, err = openrtb_ext.NewBidderParamsValidator(cfg.BidderParamsDir)
	if err != nil {
		glog.Fatalf("Failed to create the bidder params validator. %v", err)
	}

	r.MetricsEngine = metricsConf.NewMetricsEngine(cfg, openrtb_ext.CoreBidderNames())

	bidders, errs := exchange.BuildAdapters(cfg, newPreviewTransport(cfg), r.MetricsEngine)
	if len(errs) > 0 {
		return nil, errortypes.NewAggregateErrors("Failed to initialize adapters", errs)
	}
	disabledBidders := exchange.GetDisabledBidderWarningMessages(cfg.BidderInfos)

	previewEndpoint, err := preview.NewEndpoint(bidders, disabledBidders, r.ParamsValidator, r.MetricsEngine, cfg.Preview.Timeout())
	if err != nil {
		glog.Fatalf("Failed to create the preview endpoint handler. %v", err)
	}

	r.POST("/passback/preview/:bidderName", previewEndpoint)
	r.GET("/info/bidders", infoEndpoints.NewBiddersEndpoint(cfg.BidderInfos))
	r.GET("/info/bidders/:bidderName", infoEndpoints.NewBidderDetailsEndpoint(cfg.BidderInfos))
	r.GET("/bidders/params", NewJsonDirectoryServer(cfg.BidderParamsDir, r.ParamsValidator))
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))
	r.HandlerFunc(http.MethodGet, "/version", endpoints.NewVersionEndpoint(version, revision))

	return r, nil
}

// newPreviewTransport picks where bidder calls made by the preview endpoint are sent.
func newPreviewTransport(cfg *config.Configuration) adapters.Transport {
	if cfg.Preview.Transport != config.PreviewTransportHTTP {
		return adapters.EchoTransport{}
	}
	glog.Infof("Preview requests will be sent to the bidder endpoints")
	return adapters.HTTPTransport{
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   cfg.Preview.Timeout(),
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SupportCORS enables CORS for the given handler.
//
// Every origin is allowed along with credentials, which is what lets a publisher page load the
// preview from its own domain. For more info, see:
//
// - https://github.com/rs/cors/issues/55
// - https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS/Errors/CORSNotSupportingCredentials
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
