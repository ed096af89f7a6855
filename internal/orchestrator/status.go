package orchestrator

import (
	"fmt"
	"strings"
)

// Status — режим выполнения узла.
//
// Статус задаётся при создании узла (или загрузке) и меняется
// только через SetStatus; во время выполнения он не вычисляется.
type Status string

const (
	// StatusExecute — задача выполняется через wrapper, её результаты
	// попадают в общий результат и передаются дочерним узлам.
	StatusExecute Status = "execute"

	// StatusBypass — задача не выполняется; дочерние узлы получают
	// прикреплённые crawler'ы как есть.
	StatusBypass Status = "bypass"

	// StatusIgnore — узел и всё поддерево пропускаются.
	StatusIgnore Status = "ignore"
)

// ParseStatus разбирает статус (без учёта регистра).
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// IsValid возвращает true для известных статусов.
func (s Status) IsValid() bool {
	switch s {
	case StatusExecute, StatusBypass, StatusIgnore:
		return true
	default:
		return false
	}
}

// Contributes возвращает true, если результаты узла попадают
// в общий результат.
func (s Status) Contributes() bool {
	return s == StatusExecute
}

// String реализует fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
