package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ramgopal99/centipede/internal/domain"
)

// uniqueViolation — код ошибки PostgreSQL для конфликта ключа.
const uniqueViolation = "23505"

// RunRepo — репозиторий истории запусков.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create сохраняет новый запуск.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	configs, paths, stats, err := marshalRun(run)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO centipede_runs (id, configs, paths, status, stats, results, started_at, finished_at, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID,
		configs,
		paths,
		run.Status,
		stats,
		nullJSON(run.Results),
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
		run.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: run %s", ErrAlreadyExists, run.ID)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Update сохраняет статус, статистику и результаты запуска.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	query := `
		UPDATE centipede_runs
		SET status = $2, stats = $3, results = $4, started_at = $5, finished_at = $6, error = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		stats,
		nullJSON(run.Results),
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает запуск по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, configs, paths, status, stats, results, started_at, finished_at, error, created_at
		FROM centipede_runs
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// List возвращает последние запуски, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, configs, paths, status, stats, results, started_at, finished_at, error, created_at
		FROM centipede_runs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// --- Helpers ---

// RunFilter — параметры выборки запусков.
type RunFilter struct {
	Status domain.RunStatus
	Limit  int
	Offset int
}

func marshalRun(run *domain.Run) (configs, paths, stats []byte, err error) {
	if configs, err = json.Marshal(nonNil(run.Configs)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal configs: %w", err)
	}
	if paths, err = json.Marshal(nonNil(run.Paths)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal paths: %w", err)
	}
	if stats, err = json.Marshal(run.Stats); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal stats: %w", err)
	}
	return configs, paths, stats, nil
}

// scanRun сканирует одну строку в Run. pgx.Row и pgx.Rows
// оба удовлетворяют интерфейсу pgx.Row.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var configs, paths, stats, results []byte
	var runError *string

	err := row.Scan(
		&run.ID,
		&configs,
		&paths,
		&run.Status,
		&stats,
		&results,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if err := json.Unmarshal(configs, &run.Configs); err != nil {
		return nil, fmt.Errorf("unmarshal configs: %w", err)
	}
	if err := json.Unmarshal(paths, &run.Paths); err != nil {
		return nil, fmt.Errorf("unmarshal paths: %w", err)
	}
	if err := json.Unmarshal(stats, &run.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if results != nil {
		run.Results = json.RawMessage(results)
	}
	if runError != nil {
		run.Error = *runError
	}
	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullJSON возвращает nil для пустого JSON (для NULL в БД).
func nullJSON(b json.RawMessage) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
