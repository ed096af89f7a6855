package cli

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument — неверный аргумент команды.
var ErrInvalidArgument = errors.New("invalid argument")

// ExitError — завершение с заданным кодом без дополнительного
// сообщения (текст уже выведен командой).
type ExitError struct {
	Code int
}

// Error реализует интерфейс error.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
