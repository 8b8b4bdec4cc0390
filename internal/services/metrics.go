package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vettoo_reports_computed_total",
		Help: "Report computations by training-contract status.",
	}, []string{"status"})

	reportsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vettoo_reports_exported_total",
		Help: "Report workbook exports by training-contract status.",
	}, []string{"status"})
)
