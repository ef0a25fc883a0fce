package metrics

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics backed MetricsEngine
type Metrics struct {
	MetricsRegistry            metrics.Registry
	ConnectionCounter          metrics.Counter
	ConnectionAcceptErrorMeter metrics.Meter
	ConnectionCloseErrorMeter  metrics.Meter
	RequestTimer               metrics.Timer
	RequestStatuses            map[RequestType]map[RequestStatus]metrics.Meter
	AdapterMetrics             map[openrtb_ext.BidderName]*AdapterMetrics

	exchanges []openrtb_ext.BidderName
}

// AdapterMetrics houses the metrics for a particular adapter
type AdapterMetrics struct {
	RequestMeter   metrics.Meter
	NoBidMeter     metrics.Meter
	ErrorMeters    map[AdapterError]metrics.Meter
	RequestTimer   metrics.Timer
	PriceHistogram metrics.Histogram
}

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
func NewBlankMetrics(registry metrics.Registry, exchanges []openrtb_ext.BidderName) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:            registry,
		ConnectionCounter:          metrics.NilCounter{},
		ConnectionAcceptErrorMeter: blankMeter,
		ConnectionCloseErrorMeter:  blankMeter,
		RequestTimer:               &metrics.NilTimer{},
		RequestStatuses:            make(map[RequestType]map[RequestStatus]metrics.Meter),
		AdapterMetrics:             make(map[openrtb_ext.BidderName]*AdapterMetrics, len(exchanges)),
		exchanges:                  exchanges,
	}
	for _, a := range exchanges {
		newMetrics.AdapterMetrics[a] = makeBlankAdapterMetrics()
	}

	for _, t := range RequestTypes() {
		newMetrics.RequestStatuses[t] = make(map[RequestStatus]metrics.Meter)
		for _, s := range RequestStatuses() {
			newMetrics.RequestStatuses[t][s] = blankMeter
		}
	}

	return newMetrics
}

// NewMetrics creates a new Metrics object with needed metrics defined.
func NewMetrics(registry metrics.Registry, exchanges []openrtb_ext.BidderName) *Metrics {
	newMetrics := NewBlankMetrics(registry, exchanges)
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptErrorMeter = metrics.GetOrRegisterMeter("connection_accept_errors", registry)
	newMetrics.ConnectionCloseErrorMeter = metrics.GetOrRegisterMeter("connection_close_errors", registry)
	newMetrics.RequestTimer = metrics.GetOrRegisterTimer("request_time", registry)

	for _, a := range exchanges {
		registerAdapterMetrics(registry, string(a), newMetrics.AdapterMetrics[a])
	}
	for typ, statusMap := range newMetrics.RequestStatuses {
		for stat := range statusMap {
			statusMap[stat] = metrics.GetOrRegisterMeter("requests."+string(stat)+"."+string(typ), registry)
		}
	}
	return newMetrics
}

func makeBlankAdapterMetrics() *AdapterMetrics {
	blankMeter := &metrics.NilMeter{}
	newAdapter := &AdapterMetrics{
		RequestMeter:   blankMeter,
		NoBidMeter:     blankMeter,
		ErrorMeters:    make(map[AdapterError]metrics.Meter),
		RequestTimer:   &metrics.NilTimer{},
		PriceHistogram: &metrics.NilHistogram{},
	}
	for _, err := range AdapterErrors() {
		newAdapter.ErrorMeters[err] = blankMeter
	}
	return newAdapter
}

func registerAdapterMetrics(registry metrics.Registry, exchange string, am *AdapterMetrics) {
	am.RequestMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.requests", exchange), registry)
	am.NoBidMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.no_bid_requests", exchange), registry)
	am.RequestTimer = metrics.GetOrRegisterTimer(fmt.Sprintf("adapter.%s.request_time", exchange), registry)
	am.PriceHistogram = metrics.GetOrRegisterHistogram(fmt.Sprintf("adapter.%s.prices", exchange), registry, metrics.NewExpDecaySample(1028, 0.015))
	for err := range am.ErrorMeters {
		am.ErrorMeters[err] = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.requests.%s", exchange, err), registry)
	}
}

// RecordConnectionAccept implements a part of the MetricsEngine interface
func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrorMeter.Mark(1)
	}
}

// RecordConnectionClose implements a part of the MetricsEngine interface
func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrorMeter.Mark(1)
	}
}

func (me *Metrics) RecordRequest(labels Labels) {
	if statusMap, ok := me.RequestStatuses[labels.RType]; ok {
		if meter, ok := statusMap[labels.RequestStatus]; ok {
			meter.Mark(1)
		}
	}
}

// RecordRequestTime implements a part of the MetricsEngine interface. The calling code is responsible
// for determining the call duration.
func (me *Metrics) RecordRequestTime(labels Labels, length time.Duration) {
	// Only record times for successful requests, as we don't have labels to screen out bad requests.
	if labels.RequestStatus == RequestStatusOK {
		me.RequestTimer.Update(length)
	}
}

func (me *Metrics) RecordAdapterRequest(labels AdapterLabels) {
	am, ok := me.AdapterMetrics[labels.Adapter]
	if !ok {
		glog.Errorf("Trying to run adapter metrics on %s: adapter metrics not found", string(labels.Adapter))
		return
	}

	am.RequestMeter.Mark(1)
	if labels.AdapterBids == AdapterBidNone {
		am.NoBidMeter.Mark(1)
	}
	for err := range labels.AdapterErrors {
		am.ErrorMeters[err].Mark(1)
	}
}

// RecordAdapterTime implements a part of the MetricsEngine interface. Records the adapter response time
func (me *Metrics) RecordAdapterTime(labels AdapterLabels, length time.Duration) {
	am, ok := me.AdapterMetrics[labels.Adapter]
	if !ok {
		glog.Errorf("Trying to run adapter latency metrics on %s: adapter metrics not found", string(labels.Adapter))
		return
	}
	am.RequestTimer.Update(length)
}

// RecordAdapterPrice implements a part of the MetricsEngine interface. The histogram holds prices in
// thousandths of a currency unit.
func (me *Metrics) RecordAdapterPrice(labels AdapterLabels, cpm float64) {
	am, ok := me.AdapterMetrics[labels.Adapter]
	if !ok {
		glog.Errorf("Trying to run adapter price metrics on %s: adapter metrics not found", string(labels.Adapter))
		return
	}
	am.PriceHistogram.Update(int64(cpm * 1000))
}

// RecordPassbackSelection counts the creative source picked for each bid.
func (me *Metrics) RecordPassbackSelection(labels PassbackLabels) {
	if _, ok := me.AdapterMetrics[labels.Adapter]; !ok {
		glog.Errorf("Trying to run passback metrics on %s: adapter metrics not found", string(labels.Adapter))
		return
	}
	name := fmt.Sprintf("adapter.%s.passback.%s", labels.Adapter, PassbackLabel(labels.Integration))
	metrics.GetOrRegisterMeter(name, me.MetricsRegistry).Mark(1)
}
