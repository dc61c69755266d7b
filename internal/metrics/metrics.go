package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntriesCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prizeplatform",
		Name:      "entries_credited_total",
		Help:      "Entries credited to user balances, by source.",
	}, []string{"source"})

	EntriesDebited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prizeplatform",
		Name:      "entries_debited_total",
		Help:      "Entries debited from user balances, by source.",
	}, []string{"source"})

	DrawsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prizeplatform",
		Name:      "draws_executed_total",
		Help:      "Prize draws executed, by result.",
	}, []string{"result"})

	WinnersSelected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prizeplatform",
		Name:      "winners_selected_total",
		Help:      "Winners selected across all prize draws.",
	})

	WheelSpins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prizeplatform",
		Name:      "wheel_spins_total",
		Help:      "Instant-win wheel spins, by outcome label.",
	}, []string{"outcome"})

	SchedulerSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prizeplatform",
		Name:      "scheduler_sweeps_total",
		Help:      "Completed scheduler sweeps.",
	})

	DrawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prizeplatform",
		Name:      "draw_duration_seconds",
		Help:      "Wall time of winner selection per draw.",
		Buckets:   prometheus.DefBuckets,
	})
)
