package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HotAPIRequestTotal           = "hot_api_requests_total"
	HotAPIRequestDurationSeconds = "hot_api_request_duration_seconds"
	FeedLiveEventsTotal          = "feed_live_events_total"
	FeedMutationsTotal           = "feed_mutations_total"
	FeedStaleResponsesTotal      = "feed_stale_responses_total"
	FeedSendsTotal               = "feed_sends_total"
	LiveTransportReconnects      = "live_transport_reconnects_total"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{}

	PromCounters = map[string]*prometheus.CounterVec{
		HotAPIRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HotAPIRequestTotal,
			Help: "Count of all hot API requests",
		}, []string{"endpoint", "code"}),
		FeedLiveEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: FeedLiveEventsTotal,
			Help: "Count of live events by outcome",
		}, []string{"outcome"}),
		FeedMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: FeedMutationsTotal,
			Help: "Count of message store mutations by kind",
		}, []string{"kind"}),
		FeedStaleResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: FeedStaleResponsesTotal,
			Help: "Count of responses discarded after a channel switch",
		}, []string{"operation"}),
		FeedSendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: FeedSendsTotal,
			Help: "Count of optimistic sends by result",
		}, []string{"result"}),
		LiveTransportReconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LiveTransportReconnects,
			Help: "Count of live transport connection attempts",
		}, []string{"transport", "result"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HotAPIRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HotAPIRequestDurationSeconds,
			Help: "Duration of all hot API requests",
		}, []string{"endpoint"}),
	}
)

func IncCounter(name string, labels ...string) {
	if c, ok := PromCounters[name]; ok {
		c.WithLabelValues(labels...).Inc()
	}
}
