// Package telemetry обеспечивает наблюдаемость.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики выполнения дерева задач
//
// Логи CLI пишутся в stderr, метрики отдаются на /metrics,
// если задан METRICS_ADDR (или флаг --metrics-addr).
package telemetry
