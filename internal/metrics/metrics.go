// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

// Package metrics exposes Prometheus counters for the HTTP API, plant
// queries and seeding runs. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plotwise-dev/plotwise/internal/store"
)

// Namespace prefixes every metric name.
const Namespace = "plotwise"

// Collector owns a private registry; nothing is registered globally.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	plantQueries *prometheus.CounterVec
	plantResults prometheus.Histogram

	seedRuns   *prometheus.CounterVec
	seedWrites *prometheus.CounterVec

	graphNodes *prometheus.GaugeVec
	graphEdges prometheus.Gauge
}

// New creates a Collector with Go runtime and process collectors attached.
func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		plantQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "plant_queries_total",
			Help:      "Plant suitability queries by number of filters and outcome",
		}, []string{"filters", "status"}),
		plantResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "plant_query_results",
			Help:      "Plants returned per suitability query",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		seedRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "seed_runs_total",
			Help:      "Seeding runs by outcome",
		}, []string{"status"}),
		seedWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "seed_writes_total",
			Help:      "Records upserted by seeding runs",
		}, []string{"kind"}),
		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the graph store by entity type",
		}, []string{"type"}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_edges",
			Help:      "Edges in the graph store",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.plantQueries,
		c.plantResults,
		c.seedRuns,
		c.seedWrites,
		c.graphNodes,
		c.graphEdges,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one finished request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObservePlantQuery records a suitability query with the number of
// non-empty filters.
func (c *Collector) ObservePlantQuery(filters, results int, err error) {
	if c == nil {
		return
	}
	c.plantQueries.WithLabelValues(strconv.Itoa(filters), outcome(err)).Inc()
	if err == nil {
		c.plantResults.Observe(float64(results))
	}
}

// ObserveSeed records a seeding run.
func (c *Collector) ObserveSeed(nodes, edges int, err error) {
	if c == nil {
		return
	}
	c.seedRuns.WithLabelValues(outcome(err)).Inc()
	c.seedWrites.WithLabelValues("node").Add(float64(nodes))
	c.seedWrites.WithLabelValues("edge").Add(float64(edges))
}

// SetGraphStats publishes store counts as gauges.
func (c *Collector) SetGraphStats(s store.Stats) {
	if c == nil {
		return
	}
	c.graphNodes.Reset()
	for t, n := range s.NodesByType {
		c.graphNodes.WithLabelValues(string(t)).Set(float64(n))
	}
	c.graphEdges.Set(float64(s.Edges))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
