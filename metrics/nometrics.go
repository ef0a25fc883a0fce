package metrics

import (
	"time"
)

// NilMetricsEngine implements MetricsEngine by discarding everything. The host uses it when no
// backend is configured.
type NilMetricsEngine struct{}

func (me *NilMetricsEngine) RecordConnectionAccept(success bool) {
}

func (me *NilMetricsEngine) RecordConnectionClose(success bool) {
}

func (me *NilMetricsEngine) RecordRequest(labels Labels) {
}

func (me *NilMetricsEngine) RecordRequestTime(labels Labels, length time.Duration) {
}

func (me *NilMetricsEngine) RecordAdapterRequest(labels AdapterLabels) {
}

func (me *NilMetricsEngine) RecordAdapterTime(labels AdapterLabels, length time.Duration) {
}

func (me *NilMetricsEngine) RecordAdapterPrice(labels AdapterLabels, cpm float64) {
}

func (me *NilMetricsEngine) RecordPassbackSelection(labels PassbackLabels) {
}
