package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики выполнения дерева задач.
var (
	// HolderExecutions — количество обработанных узлов по статусу.
	HolderExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "centipede_holder_executions_total",
		Help: "Task holders processed, by status",
	}, []string{"status"})

	// TaskOutputs — количество crawler'ов, созданных задачами.
	TaskOutputs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "centipede_task_outputs_total",
		Help: "Crawlers produced by tasks, by task type",
	}, []string{"task"})

	// WrapperDuration — длительность выполнения задачи wrapper'ом.
	WrapperDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "centipede_wrapper_run_duration_seconds",
		Help:    "Task execution time through a wrapper",
		Buckets: prometheus.DefBuckets,
	}, []string{"wrapper", "task"})

	// WrapperFailures — количество неудачных запусков wrapper'а.
	WrapperFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "centipede_wrapper_failures_total",
		Help: "Failed task executions, by wrapper",
	}, []string{"wrapper", "task"})
)

// ObserveWrapperRun записывает длительность и результат запуска.
func ObserveWrapperRun(wrapper, task string, started time.Time, produced int, err error) {
	WrapperDuration.WithLabelValues(wrapper, task).Observe(time.Since(started).Seconds())
	if err != nil {
		WrapperFailures.WithLabelValues(wrapper, task).Inc()
		return
	}
	TaskOutputs.WithLabelValues(task).Add(float64(produced))
}

// ServeMetrics запускает HTTP сервер с /metrics до отмены ctx.
// Пустой addr — сервер не запускается.
func ServeMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics shutdown error", "error", err)
		}
	}()
}
