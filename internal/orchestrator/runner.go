package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/telemetry"
	"github.com/ramgopal99/centipede/internal/values"
)

// Runner выполняет дерево задач.
//
// Выполнение рекурсивное, в глубину:
//  1. query отбирает crawler'ы узла; каждый клонируется, на клон
//     ставятся переменные узла, клон прикрепляется к задаче
//  2. ignore или ноль вложений — пустой результат, дочерние узлы
//     не вызываются
//  3. bypass — дочерние узлы получают прикреплённые crawler'ы
//  4. execute — дочерние узлы получают результат wrapper'а,
//     он же попадает в общий результат
//  5. результаты дочерних узлов добавляются в объявленном порядке
//
// Любая ошибка отменяет весь запуск: частичных результатов нет.
type Runner struct {
	// Logger — логгер (по умолчанию из контекста).
	Logger *slog.Logger

	// Parallelism — сколько дочерних узлов одного родителя выполнять
	// одновременно. 0 и 1 — строго последовательно. Порядок результатов
	// от этого не зависит.
	Parallelism int
}

// RunStats — статистика запуска.
type RunStats struct {
	Executed int // узлы, выполнившие задачу
	Bypassed int // узлы в режиме bypass
	Ignored  int // узлы в режиме ignore
	Skipped  int // узлы без подходящих crawler'ов
	Produced int // crawler'ы в общем результате
}

// Run выполняет дерево с корнем root.
func (r *Runner) Run(ctx context.Context, root *TaskHolder, crawlers []crawler.Crawler) ([]crawler.Crawler, error) {
	result, _, err := r.RunWithStats(ctx, root, crawlers)
	return result, err
}

// RunWithStats выполняет дерево и возвращает статистику.
func (r *Runner) RunWithStats(ctx context.Context, root *TaskHolder, crawlers []crawler.Crawler) ([]crawler.Crawler, RunStats, error) {
	logger := r.Logger
	if logger == nil {
		logger = telemetry.FromContext(ctx)
	}

	run := &execution{runner: r, logger: logger}
	result, err := run.step(ctx, root, crawlers, "0")
	if err != nil {
		return nil, RunStats{}, err
	}

	run.stats.Produced = len(result)
	return result, run.stats, nil
}

// execution — состояние одного запуска.
type execution struct {
	runner *Runner
	logger *slog.Logger

	mu    sync.Mutex
	stats RunStats
}

func (e *execution) count(fn func(s *RunStats)) {
	e.mu.Lock()
	fn(&e.stats)
	e.mu.Unlock()
}

// step выполняет узел h над пачкой crawlers. path — позиция узла
// в дереве ("0/1/0"), используется в логах и ошибках.
func (e *execution) step(ctx context.Context, h *TaskHolder, crawlers []crawler.Crawler, path string) ([]crawler.Crawler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := telemetry.WithHolder(telemetry.WithTask(e.logger, h.task.Type()), path)

	matches, err := h.Query().Run(crawlers, h.scope())
	if err != nil {
		return nil, fmt.Errorf("holder %s (%s): %w", path, h.task.Type(), err)
	}

	t := h.task.Clone()
	for _, m := range matches {
		c := m.Crawler.Clone()
		for _, name := range h.VarNames() {
			c.SetVar(name, values.Copy(h.vars[name]), h.IsContextVar(name))
		}
		t.Add(c, m.FilePath)
	}

	if h.status == StatusIgnore {
		e.count(func(s *RunStats) { s.Ignored++ })
		telemetry.HolderExecutions.WithLabelValues(string(h.status)).Inc()
		logger.Debug("holder ignored", "status", h.status)
		return nil, nil
	}
	if len(t.Attachments()) == 0 {
		e.count(func(s *RunStats) { s.Skipped++ })
		logger.Debug("holder has no matching crawlers", "status", h.status, "crawlers", len(crawlers))
		return nil, nil
	}

	telemetry.HolderExecutions.WithLabelValues(string(h.status)).Inc()

	var (
		result    []crawler.Crawler
		forwarded []crawler.Crawler
	)
	switch h.status {
	case StatusBypass:
		e.count(func(s *RunStats) { s.Bypassed++ })
		forwarded = t.Crawlers()
		logger.Debug("holder bypassed", "crawlers", len(forwarded))

	default:
		e.count(func(s *RunStats) { s.Executed++ })
		logger.Debug("executing holder", "status", h.status, "crawlers", len(t.Attachments()), "wrapper", h.wrapper.Name())

		forwarded, err = h.wrapper.Run(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("holder %s (%s): %w", path, h.task.Type(), err)
		}
	}
	if h.status.Contributes() {
		result = append(result, forwarded...)
	}

	children, err := e.children(ctx, h, forwarded, path)
	if err != nil {
		return nil, err
	}
	for _, r := range children {
		result = append(result, r...)
	}
	return result, nil
}

// children выполняет дочерние узлы и возвращает их результаты
// в объявленном порядке.
func (e *execution) children(ctx context.Context, h *TaskHolder, forwarded []crawler.Crawler, path string) ([][]crawler.Crawler, error) {
	subs := h.subTaskHolders
	results := make([][]crawler.Crawler, len(subs))

	if e.runner.Parallelism <= 1 || len(subs) < 2 {
		for i, child := range subs {
			r, err := e.step(ctx, child, forwarded, path+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.runner.Parallelism)
	for i, child := range subs {
		g.Go(func() error {
			r, err := e.step(gctx, child, forwarded, path+"/"+strconv.Itoa(i))
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
