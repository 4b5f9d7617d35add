// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface handlers use to record engagement activity.
type Recorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(d time.Duration)
	RecordFollowToggle(following bool)
	RecordLikeToggle(liked bool)
	RecordComment()
	RecordView()
}

// Collector implements Recorder on a Prometheus registry.
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	followToggles   *prometheus.CounterVec
	likeToggles     *prometheus.CounterVec
	comments        prometheus.Counter
	views           prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with the
// provided registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reeltide_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reeltide_request_duration_seconds",
			Help:    "Request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		followToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reeltide_follow_toggles_total",
			Help: "Follow toggle operations by resulting state.",
		}, []string{"state"}),
		likeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reeltide_like_toggles_total",
			Help: "Like toggle operations by resulting state.",
		}, []string{"state"}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reeltide_comments_total",
			Help: "Comments appended to videos.",
		}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reeltide_views_total",
			Help: "View increments recorded.",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.followToggles,
		c.likeToggles,
		c.comments,
		c.views,
	)

	return c
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordRequestDuration(d time.Duration) {
	c.requestDuration.Observe(d.Seconds())
}

func (c *Collector) RecordFollowToggle(following bool) {
	c.followToggles.WithLabelValues(toggleState(following, "following", "unfollowed")).Inc()
}

func (c *Collector) RecordLikeToggle(liked bool) {
	c.likeToggles.WithLabelValues(toggleState(liked, "liked", "unliked")).Inc()
}

func (c *Collector) RecordComment() {
	c.comments.Inc()
}

func (c *Collector) RecordView() {
	c.views.Inc()
}

func toggleState(on bool, onLabel, offLabel string) string {
	if on {
		return onLabel
	}
	return offLabel
}

// Handler returns the scrape endpoint for the provided gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards everything. Used where metrics are not
// wired, e.g. tests.
type Nop struct{}

func (Nop) RecordHTTPStatus(int) {}

func (Nop) RecordRequestDuration(time.Duration) {}

func (Nop) RecordFollowToggle(bool) {}

func (Nop) RecordLikeToggle(bool) {}

func (Nop) RecordComment() {}

func (Nop) RecordView() {}
