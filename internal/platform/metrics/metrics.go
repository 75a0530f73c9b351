// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package metrics provides Prometheus instrumentation for the catalogue core.
//
// Collectors are registered against the supplied registerer so tests can use
// an isolated [prometheus.NewRegistry] while main uses the default one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups lifecycle, mirror and notification collectors.
type Metrics struct {
	Transitions          *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	CascadeSteps         *prometheus.CounterVec
	MirrorSyncs          *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	CacheLookups         *prometheus.CounterVec
	AuditScanTruncations prometheus.Counter
}

// New creates and registers all collectors.
func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogue_lifecycle_transitions_total",
			Help: "Lifecycle transitions applied, by resource kind and action.",
		}, []string{"kind", "action"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogue_lifecycle_operation_duration_seconds",
			Help:    "Duration of lifecycle operations including cascades and mirror syncs.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		CascadeSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogue_cascade_steps_total",
			Help: "Cascade steps applied to dependents, by action and outcome (applied, skipped, failed).",
		}, []string{"action", "outcome"}),
		MirrorSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogue_mirror_syncs_total",
			Help: "Public mirror synchronisations, by resource kind and action.",
		}, []string{"kind", "action"}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogue_notification_failures_total",
			Help: "Mirror notifications that could not be delivered, by topic.",
		}, []string{"topic"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogue_cache_lookups_total",
			Help: "Read-cache lookups, by result (hit, miss, error).",
		}, []string{"result"}),
		AuditScanTruncations: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalogue_audit_scan_truncations_total",
			Help: "Audit-filtered browses whose index scan hit the configured cap.",
		}),
	}
}

// The helpers below are nil-safe so components can run without metrics.

func (m *Metrics) ObserveTransition(kind, action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(kind, action).Inc()
}

// ObserveOperation records the duration of an operation started at start.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCascade(action, outcome string) {
	if m == nil {
		return
	}
	m.CascadeSteps.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveMirror(kind, action string) {
	if m == nil {
		return
	}
	m.MirrorSyncs.WithLabelValues(kind, action).Inc()
}

func (m *Metrics) ObserveNotificationFailure(topic string) {
	if m == nil {
		return
	}
	m.NotificationFailures.WithLabelValues(topic).Inc()
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAuditScanTruncated() {
	if m == nil {
		return
	}
	m.AuditScanTruncations.Inc()
}
