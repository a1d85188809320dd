// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignalsIngested counts signals accepted into the cache.
	SignalsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_engine_signals_ingested_total",
		Help: "Signals accepted into the cache, by source type.",
	}, []string{"source_type"})

	// ForecastsEmitted counts persisted forecast events.
	ForecastsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_engine_forecasts_emitted_total",
		Help: "Forecast events persisted, by risk type.",
	}, []string{"risk_type"})

	// PredictorFailures counts predictors that panicked or errored.
	// A failing predictor never aborts the others.
	PredictorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_engine_predictor_failures_total",
		Help: "Predictor invocations that failed, by predictor.",
	}, []string{"predictor"})

	// SignalsPurged counts cache entries reclaimed by purges.
	SignalsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_engine_signals_purged_total",
		Help: "Cache entries removed by retention purges.",
	})
)
