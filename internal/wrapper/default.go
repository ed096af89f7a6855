package wrapper

import (
	"context"
	"time"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/telemetry"
)

// DefaultWrapper выполняет задачу в текущем процессе.
type DefaultWrapper struct {
	Options
}

// NewDefaultWrapper создаёт новый DefaultWrapper.
func NewDefaultWrapper() *DefaultWrapper {
	return &DefaultWrapper{Options: newOptions(NameDefault)}
}

// Run вызывает t.Output.
func (w *DefaultWrapper) Run(ctx context.Context, t *task.Task) ([]crawler.Crawler, error) {
	started := time.Now()
	result, err := t.Output(ctx)
	telemetry.ObserveWrapperRun(w.Name(), t.Type(), started, len(result), err)
	return result, err
}
