package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/domain"
	"github.com/ramgopal99/centipede/internal/repo"
)

// runRecorder сохраняет запуск в историю.
type runRecorder struct {
	pool   *pgxpool.Pool
	runs   *repo.RunRepo
	run    *domain.Run
	logger *slog.Logger
}

func newRunRecorder(ctx context.Context, dsn string, id uuid.UUID, configs, paths []string, logger *slog.Logger) (*runRecorder, error) {
	pool, err := repo.NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	run := domain.NewRun(configs, paths)
	run.ID = id
	run.MarkRunning()

	runs := repo.NewRunRepo(pool)
	if err := runs.Create(ctx, run); err != nil {
		pool.Close()
		return nil, err
	}
	return &runRecorder{pool: pool, runs: runs, run: run, logger: logger}, nil
}

func (r *runRecorder) succeed(ctx context.Context, stats domain.RunStats, result []crawler.Crawler) error {
	data, err := crawler.MarshalList(result)
	if err != nil {
		return err
	}
	r.run.MarkSucceeded(stats, data)
	return r.runs.Update(ctx, r.run)
}

// fail сохраняет ошибку запуска. Ошибка записи только логируется:
// наружу возвращается исходная ошибка запуска.
func (r *runRecorder) fail(ctx context.Context, runErr error) {
	if errors.Is(runErr, context.Canceled) {
		r.run.MarkCancelled()
	} else {
		r.run.MarkFailed(runErr.Error())
	}
	if err := r.runs.Update(context.WithoutCancel(ctx), r.run); err != nil {
		r.logger.Error("failed to record run", "error", err)
	}
}

func (r *runRecorder) Close() {
	r.pool.Close()
}
