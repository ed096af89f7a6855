package loader

import (
	"errors"
	"fmt"
)

// Ошибки загрузки конфигураций.
var (
	// ErrUnexpectedContent — содержимое не соответствует формату.
	ErrUnexpectedContent = errors.New("unexpected configuration content")

	// ErrInvalidFile — файл конфигурации не существует.
	ErrInvalidFile = errors.New("invalid configuration file")

	// ErrInvalidDirectory — каталог конфигураций не существует.
	ErrInvalidDirectory = errors.New("invalid configuration directory")

	// ErrUnsupportedScripts — конфигурация пытается загрузить scripts.
	ErrUnsupportedScripts = errors.New("scripts are not supported, register tasks at startup")

	// ErrIncludeCycle — include ссылается на уже включённый файл.
	ErrIncludeCycle = errors.New("include cycle detected")
)

// ValidationError — ошибка узла конфигурации с контекстом.
type ValidationError struct {
	Config  string // имя конфигурации
	Holder  string // позиция узла: "tasks[0].tasks[1]"
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Holder != "" {
		msg = e.Holder + ": " + msg
	}
	if e.Config != "" {
		msg = e.Config + ": " + msg
	}
	return msg
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт ошибку валидации узла.
func NewValidationError(config, holder, field string, err error) *ValidationError {
	return &ValidationError{
		Config:  config,
		Holder:  holder,
		Field:   field,
		Message: fmt.Sprintf("%s: %v", field, err),
		Err:     err,
	}
}
