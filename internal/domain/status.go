package domain

// RunStatus — статус запуска.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	                  ↘ CANCELLED
type RunStatus string

const (
	// RunStatusPending — запись создана, выполнение не начато.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — деревья выполняются.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все деревья выполнены.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — запуск прерван ошибкой.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusCancelled — запуск прерван сигналом.
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}
