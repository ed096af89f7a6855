package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run — запись об одном запуске деревьев задач.
//
// Run создаётся командой `centipede run --record` перед выполнением
// и обновляется после него. Результаты хранятся в JSON-форме
// crawler'ов.
type Run struct {
	// ID — уникальный идентификатор запуска (он же run_id в логах).
	ID uuid.UUID `json:"id"`

	// Configs — файлы конфигураций, из которых загружены деревья.
	Configs []string `json:"configs"`

	// Paths — входные пути, из которых построены crawler'ы.
	Paths []string `json:"paths"`

	// Status — текущий статус запуска.
	Status RunStatus `json:"status"`

	// Stats — статистика узлов, заполняется по завершении.
	Stats RunStats `json:"stats"`

	// Results — crawler'ы результата (JSON-список).
	Results json.RawMessage `json:"results,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения (успешного или с ошибкой).
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если запуск завершился с FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}

// RunStats — сводка по узлам запуска.
type RunStats struct {
	Executed int `json:"executed"`
	Bypassed int `json:"bypassed"`
	Ignored  int `json:"ignored"`
	Skipped  int `json:"skipped"`
	Produced int `json:"produced"`
}

// NewRun создаёт запись запуска в статусе PENDING.
func NewRun(configs, paths []string) *Run {
	return &Run{
		ID:        uuid.New(),
		Configs:   append([]string(nil), configs...),
		Paths:     append([]string(nil), paths...),
		Status:    RunStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now().UTC()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded(stats RunStats, results json.RawMessage) {
	now := time.Now().UTC()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	r.Stats = stats
	r.Results = results
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now().UTC()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}

// MarkCancelled переводит run в статус CANCELLED.
func (r *Run) MarkCancelled() {
	now := time.Now().UTC()
	r.Status = RunStatusCancelled
	r.FinishedAt = &now
}
