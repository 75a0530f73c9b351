// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveTransition("service", "approved")
	m.ObserveTransition("service", "approved")
	m.ObserveCascade("suspend", "applied")
	m.ObserveNotificationFailure("service.create")
	m.ObserveAuditScanTruncated()
	m.ObserveOperation("verify", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("service", "approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CascadeSteps.WithLabelValues("suspend", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationFailures.WithLabelValues("service.create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditScanTruncations))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveTransition("provider", "activated")
		m.ObserveOperation("publish", time.Now())
		m.ObserveCascade("publish", "skipped")
		m.ObserveMirror("provider", "create")
		m.ObserveNotificationFailure("provider.create")
		m.ObserveCache("hit")
		m.ObserveAuditScanTruncated()
	})
}
