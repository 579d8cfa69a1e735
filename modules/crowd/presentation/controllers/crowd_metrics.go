package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_batches_created_total",
		Help: "Batches successfully ingested.",
	})
	tasksMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_tasks_materialized_total",
		Help: "Tasks materialized from uploaded rows.",
	})
	uploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_uploads_rejected_total",
		Help: "Uploads rejected before a batch was created.",
	}, []string{"reason"})
)
