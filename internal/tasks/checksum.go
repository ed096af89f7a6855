package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
)

const (
	// TaskTypeChecksum — сверка контрольных сумм.
	TaskTypeChecksum = "checksum"
)

// ChecksumTask сравнивает SHA-256 файла crawler'а (filePath)
// и файла по целевому пути вложения.
//
// При совпадении crawler передаётся дальше, при расхождении
// задача завершается с ErrChecksumMismatch.
type ChecksumTask struct{}

// NewChecksumTask создаёт новый ChecksumTask.
func NewChecksumTask() *ChecksumTask {
	return &ChecksumTask{}
}

// Perform сверяет контрольные суммы.
func (p *ChecksumTask) Perform(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	result := make([]crawler.Crawler, 0, len(t.Attachments()))

	for _, a := range t.Attachments() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if a.FilePath == "" {
			return nil, fmt.Errorf("%w: checksum", ErrMissingFilePath)
		}

		source, err := sourcePath(a.Crawler)
		if err != nil {
			return nil, err
		}

		sourceSum, err := FileChecksum(source)
		if err != nil {
			return nil, err
		}
		targetSum, err := FileChecksum(a.FilePath)
		if err != nil {
			return nil, err
		}
		if sourceSum != targetSum {
			return nil, fmt.Errorf("%w: %s (%s) != %s (%s)", ErrChecksumMismatch, source, sourceSum, a.FilePath, targetSum)
		}

		result = append(result, a.Crawler)
	}
	return result, nil
}

// FileChecksum возвращает SHA-256 файла в hex.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
