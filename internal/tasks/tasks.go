package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
)

// Ошибки встроенных задач.
var (
	// ErrMissingFilePath — у вложения нет целевого пути.
	ErrMissingFilePath = errors.New("attachment has no target file path")

	// ErrMissingSourcePath — у crawler'а нет переменной filePath.
	ErrMissingSourcePath = errors.New("crawler has no filePath variable")

	// ErrTargetExists — целевой файл уже существует, а перезапись запрещена.
	ErrTargetExists = errors.New("target file already exists")

	// ErrChecksumMismatch — контрольные суммы источника и цели различаются.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrTaskCancelled — выполнение задачи отменено.
	ErrTaskCancelled = errors.New("task execution cancelled")
)

// RegisterDefaults регистрирует встроенные задачи в общем реестре.
func RegisterDefaults() {
	RegisterAll(task.Default())
}

// RegisterAll регистрирует встроенные задачи в указанном реестре.
func RegisterAll(r *task.Registry) {
	r.Register(TaskTypeCopy, func() task.Performer { return NewCopyTask() })
	r.Register(TaskTypeRemove, func() task.Performer { return NewRemoveTask() })
	r.Register(TaskTypeChecksum, func() task.Performer { return NewChecksumTask() })
	r.Register(TaskTypeSetVars, func() task.Performer { return NewSetVarsTask() })
}

// sourcePath возвращает переменную filePath crawler'а.
func sourcePath(c crawler.Crawler) (string, error) {
	v, err := c.Var("filePath")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingSourcePath, c.Type())
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingSourcePath, c.Type())
	}
	return s, nil
}

// checkContext возвращает ошибку, если ctx отменён.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrTaskCancelled, ctx.Err())
	default:
		return nil
	}
}
