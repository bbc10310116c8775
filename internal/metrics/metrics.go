// Package metrics exposes Prometheus counters for the recognition pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recognitions counts recognition bursts by outcome ("accepted" or
	// "rejected").
	Recognitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendcore_recognitions_total",
		Help: "Recognition bursts processed, by outcome.",
	}, []string{"outcome"})

	// Enrollments counts successful reference enrollments.
	Enrollments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendcore_enrollments_total",
		Help: "Reference embeddings enrolled or replaced.",
	})

	// AttendanceRecorded counts attendance rows written to the ledger.
	AttendanceRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendcore_attendance_recorded_total",
		Help: "Attendance records written to the ledger.",
	})

	// ReplicaFailures counts best-effort replica writes that failed.
	ReplicaFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendcore_replica_failures_total",
		Help: "Remote replica operations that failed (non-fatal).",
	})
)
