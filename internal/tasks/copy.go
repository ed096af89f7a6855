package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/values"
)

const (
	// TaskTypeCopy — копирование файлов.
	TaskTypeCopy = "copy"

	optionOverwrite = "overwrite"
)

// CopyTask копирует файл каждого вложения в его целевой путь.
//
// Родительские директории создаются. Результат — crawler,
// построенный по пути копии (crawler.NewPath).
//
// Опция overwrite (по умолчанию true): при false существующий
// целевой файл — ErrTargetExists.
type CopyTask struct{}

// NewCopyTask создаёт новый CopyTask.
func NewCopyTask() *CopyTask {
	return &CopyTask{}
}

// DefaultOptions возвращает опции по умолчанию.
func (p *CopyTask) DefaultOptions() map[string]any {
	return map[string]any{
		optionOverwrite: true,
	}
}

// Perform копирует файлы.
func (p *CopyTask) Perform(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	overwrite := values.GetBool(t.Options(), optionOverwrite, true)
	result := make([]crawler.Crawler, 0, len(t.Attachments()))

	for _, a := range t.Attachments() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if a.FilePath == "" {
			return nil, fmt.Errorf("%w: copy", ErrMissingFilePath)
		}

		source, err := sourcePath(a.Crawler)
		if err != nil {
			return nil, err
		}
		if !overwrite {
			if _, err := os.Stat(a.FilePath); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrTargetExists, a.FilePath)
			}
		}
		if err := copyFile(source, a.FilePath); err != nil {
			return nil, err
		}

		copied, err := crawler.NewPath(a.FilePath)
		if err != nil {
			return nil, err
		}
		result = append(result, copied)
	}
	return result, nil
}

func copyFile(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", target, err)
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", source, target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}
