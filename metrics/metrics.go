// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for sync runs and judge requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync run outcomes used as the status label
const (
	StatusUpdated  = "updated"
	StatusUpToDate = "up_to_date"
	StatusFailed   = "failed"
	StatusLocked   = "locked"
	StatusStale    = "stale_write"
)

type Metrics struct {
	SyncRuns       *prometheus.CounterVec
	SyncDuration   prometheus.Histogram
	Entries        prometheus.Gauge
	LastContestID  prometheus.Gauge
	JudgeRequests  *prometheus.CounterVec
	EventsFailures prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_sync_runs_total",
			Help: "Total number of leaderboard sync runs by outcome",
		}, []string{"status"}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaderboard_sync_duration_seconds",
			Help:    "Duration of leaderboard sync runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		Entries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leaderboard_entries",
			Help: "Number of entries on the cumulative leaderboard",
		}),
		LastContestID: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leaderboard_last_contest_id",
			Help: "Id of the last contest merged into the leaderboard",
		}),
		JudgeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_requests_total",
			Help: "Total number of requests to the judge by endpoint and status",
		}, []string{"endpoint", "status"}),
		EventsFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_event_publish_failures_total",
			Help: "Total number of leaderboard events that could not be published",
		}),
	}
}

func (m *Metrics) ObserveSync(status string, elapsed time.Duration) {
	m.SyncRuns.WithLabelValues(status).Inc()
	m.SyncDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) SetLeaderboard(contestID int64, entries int) {
	m.LastContestID.Set(float64(contestID))
	m.Entries.Set(float64(entries))
}

// ObserveJudgeRequest satisfies judge.Observer
func (m *Metrics) ObserveJudgeRequest(endpoint, status string) {
	m.JudgeRequests.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) IncEventFailure() {
	m.EventsFailures.Inc()
}
