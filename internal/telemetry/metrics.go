/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radiostream_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "radiostream_api_active_connections",
			Help: "Number of in-flight API requests",
		},
	)

	// Playlist generation metrics
	PlaylistGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_playlist_generations_total",
			Help: "Total number of playlist generation runs by outcome",
		},
		[]string{"outcome"}, // "ok", "invalid_rating", "invalid_settings", "error"
	)

	PlaylistGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radiostream_playlist_generation_duration_seconds",
			Help:    "Duration of playlist generation runs in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	PlaylistCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radiostream_playlist_candidates",
			Help:    "Number of catalog tracks considered per playlist run",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	PlaylistPenalties = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_playlist_penalties_total",
			Help: "Total number of disqualifying penalties applied by batch limiters",
		},
		[]string{"rule"},
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radiostream_database_query_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation", "table"},
	)

	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_database_errors_total",
			Help: "Total number of failed database operations",
		},
		[]string{"operation", "table"},
	)

	// Event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_events_published_total",
			Help: "Events published on the in-process bus by type",
		},
		[]string{"type"},
	)

	EventsForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_events_forwarded_total",
			Help: "Events forwarded to NATS by result",
		},
		[]string{"result"}, // "ok", "error"
	)

	// Cache metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiostream_cache_requests_total",
			Help: "Cache lookups by key kind and result",
		},
		[]string{"kind", "result"}, // result: "hit", "miss"
	)
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
