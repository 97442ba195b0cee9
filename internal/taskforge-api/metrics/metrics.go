// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for queue activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the queue's Prometheus collectors. Retries and workflow
// cancellations have their own counters, they are not folded into the
// submit/cancel task counters.
type Metrics struct {
	registry *prometheus.Registry

	TasksSubmitted     prometheus.Counter
	TasksCompleted     prometheus.Counter
	TasksFailed        prometheus.Counter
	TasksCancelled     prometheus.Counter
	TasksRetried       prometheus.Counter
	WorkflowsSubmitted prometheus.Counter
	WorkflowsCompleted prometheus.Counter
	WorkflowsCancelled prometheus.Counter
	TasksActive        prometheus.Gauge
	TaskDuration       prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		TasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_tasks_submitted_total",
			Help: "Number of tasks submitted to the queue.",
		}),
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_tasks_completed_total",
			Help: "Number of tasks that reached completed.",
		}),
		TasksFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_tasks_failed_total",
			Help: "Number of tasks that reached failed.",
		}),
		TasksCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_tasks_cancelled_total",
			Help: "Number of tasks cancelled.",
		}),
		TasksRetried: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_tasks_retried_total",
			Help: "Number of task retry requests.",
		}),
		WorkflowsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_workflows_submitted_total",
			Help: "Number of workflows submitted.",
		}),
		WorkflowsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_workflows_completed_total",
			Help: "Number of workflows that reached completed.",
		}),
		WorkflowsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskforge_workflows_cancelled_total",
			Help: "Number of workflows cancelled.",
		}),
		TasksActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "taskforge_tasks_active",
			Help: "Number of tasks not yet in a terminal status.",
		}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskforge_task_duration_seconds",
			Help:    "Wall clock time from submission to completion.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
