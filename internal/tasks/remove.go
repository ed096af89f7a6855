package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
)

const (
	// TaskTypeRemove — удаление файлов.
	TaskTypeRemove = "remove"
)

// RemoveTask удаляет файл каждого вложения (переменная filePath)
// и передаёт crawler дальше.
type RemoveTask struct{}

// NewRemoveTask создаёт новый RemoveTask.
func NewRemoveTask() *RemoveTask {
	return &RemoveTask{}
}

// Perform удаляет файлы.
func (p *RemoveTask) Perform(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	result := make([]crawler.Crawler, 0, len(t.Attachments()))

	for _, c := range t.Crawlers() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		path, err := sourcePath(c)
		if err != nil {
			return nil, err
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove %s: %w", path, err)
		}
		result = append(result, c)
	}
	return result, nil
}
