package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seqopt_jobs_started_total",
		Help: "Number of optimization jobs accepted.",
	})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seqopt_jobs_finished_total",
		Help: "Number of optimization jobs finished, by terminal status.",
	}, []string{"status"})

	jobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seqopt_jobs_running",
		Help: "Number of optimization jobs currently running.",
	})

	objectiveEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seqopt_objective_evaluations_total",
		Help: "Number of objective function evaluations across all jobs.",
	})
)
