// Package metrics provides Prometheus collectors for the extraction pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "foiagraph"

var (
	// ChunksTotal counts chunk extraction outcomes.
	// Labels: result (ok, backend_error, parse_error)
	ChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "chunks_total",
			Help:      "Total number of chunks sent to the extraction backend by outcome",
		},
		[]string{"result"},
	)

	// BackendLatency tracks backend call duration.
	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "backend_duration_seconds",
			Help:      "Duration of extraction backend calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"backend"},
	)

	// DroppedEntities counts entities discarded for an unknown type.
	DroppedEntities = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "dropped_entities_total",
			Help:      "Total number of extracted entities dropped for an unrecognised type",
		},
	)

	// DocumentsTotal counts processed documents.
	// Labels: result (success, error)
	DocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total number of documents processed by outcome",
		},
		[]string{"result"},
	)

	CanonicalEntities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "linking",
			Name:      "canonical_entities",
			Help:      "Current number of canonical entities in the registry",
		},
	)

	LinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "linking",
			Name:      "links_total",
			Help:      "Total number of links recorded",
		},
	)

	// ExemptionCitations counts textual exemption citations.
	// Labels: code
	ExemptionCitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redaction",
			Name:      "exemption_citations_total",
			Help:      "Total number of FOIA exemption citations found by code",
		},
		[]string{"code"},
	)
)
