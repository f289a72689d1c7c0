// Package metrics exposes Prometheus counters for authentication and order activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset of metrics used by middleware and services
type Recorder interface {
	RecordAuthFailure(reason string)
	RecordTokenRefresh()
	RecordLogin(success bool)
	RecordStatusChange(to string)
}

// Collector records metrics into a Prometheus registry
type Collector struct {
	authFailures  *prometheus.CounterVec
	tokenRefresh  prometheus.Counter
	logins        *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanorder_auth_failures_total",
			Help: "Rejected authenticated requests by reason.",
		}, []string{"reason"}),
		tokenRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanorder_token_refresh_total",
			Help: "Access tokens reissued by the sliding session.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanorder_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanorder_order_status_changes_total",
			Help: "Order status transitions by target status.",
		}, []string{"to"}),
	}

	reg.MustRegister(c.authFailures, c.tokenRefresh, c.logins, c.statusChanges)
	return c
}

// RecordAuthFailure counts a rejected request
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordTokenRefresh counts a reissued token
func (c *Collector) RecordTokenRefresh() {
	c.tokenRefresh.Inc()
}

// RecordLogin counts a login attempt
func (c *Collector) RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordStatusChange counts a status transition
func (c *Collector) RecordStatusChange(to string) {
	c.statusChanges.WithLabelValues(to).Inc()
}

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordAuthFailure(string)  {}
func (Nop) RecordTokenRefresh()       {}
func (Nop) RecordLogin(bool)          {}
func (Nop) RecordStatusChange(string) {}
