// Package metrics exposes prometheus counters for the token lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssued counts transport URIs minted for display.
	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_tokens_issued_total",
		Help: "Attendance tokens issued for display.",
	})

	// Scans counts scan attempts by outcome: ok, malformed, expired,
	// persistence_error.
	Scans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classmark_scans_total",
		Help: "Scan attempts by outcome.",
	}, []string{"outcome"})

	// RecordsPersisted counts attendance records durably written.
	RecordsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_records_persisted_total",
		Help: "Attendance records appended to the store.",
	})
)
