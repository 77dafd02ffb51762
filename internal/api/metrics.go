package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerdash",
		Subsystem: "api",
		Name:      "fetches_total",
		Help:      "Upstream fetches by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "powerdash",
		Subsystem: "api",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream fetch latency by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)
