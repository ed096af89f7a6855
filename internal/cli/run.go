package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/config"
	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/domain"
	"github.com/ramgopal99/centipede/internal/loader"
	"github.com/ramgopal99/centipede/internal/orchestrator"
	"github.com/ramgopal99/centipede/internal/telemetry"
)

// NewRunCmd создаёт команду запуска деревьев задач.
func NewRunCmd(cfgFn func() *config.Config, outputFn func() *Output) *cobra.Command {
	var paths []string
	var metricsAddr string
	var record bool
	var parallelism int

	cmd := &cobra.Command{
		Use:   "run CONFIG...",
		Short: "Run task holder trees over input paths",
		Long: "Loads configuration files or directories, builds a crawler for every --path\n" +
			"and runs each top-level task holder over them in load order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			out := outputFn()

			if !cmd.Flags().Changed("parallelism") {
				parallelism = cfg.Parallelism
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = cfg.MetricsAddr
			}
			if parallelism < 1 {
				return fmt.Errorf("%w: --parallelism must be at least 1", ErrInvalidArgument)
			}

			runID := uuid.New()
			logger := telemetry.WithRunID(telemetry.FromContext(cmd.Context()), runID.String())
			ctx := telemetry.WithLogger(cmd.Context(), logger)

			holders, err := LoadTaskHolders(logger, args)
			if err != nil {
				return err
			}
			crawlers, err := BuildCrawlers(paths)
			if err != nil {
				return err
			}

			metricsCtx, stopMetrics := context.WithCancel(ctx)
			defer stopMetrics()
			telemetry.ServeMetrics(metricsCtx, metricsAddr, logger)

			var rec *runRecorder
			if record {
				rec, err = newRunRecorder(ctx, cfg.DatabaseURL, runID, args, paths, logger)
				if err != nil {
					return err
				}
				defer rec.Close()
			}

			logger.Info("run started",
				"holders", len(holders),
				"crawlers", len(crawlers),
				"parallelism", parallelism,
			)

			started := time.Now()
			runner := &orchestrator.Runner{Logger: logger, Parallelism: parallelism}
			result, stats, err := RunTaskHolders(ctx, runner, holders, crawlers)
			if err != nil {
				logger.Error("run failed", "error", err, "duration", time.Since(started))
				if rec != nil {
					rec.fail(ctx, err)
				}
				return err
			}

			logger.Info("run finished",
				"executed", stats.Executed,
				"produced", stats.Produced,
				"duration", time.Since(started),
			)
			if rec != nil {
				if err := rec.succeed(ctx, stats, result); err != nil {
					return err
				}
			}

			out.Crawlers(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&paths, "path", "p", nil, "Input path (repeatable)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&record, "record", false, "Store the run in the history database")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "Sibling task holders to run at the same time")
	cmd.MarkFlagRequired("path")

	return cmd
}

// LoadTaskHolders загружает файлы и каталоги конфигураций по порядку.
func LoadTaskHolders(logger *slog.Logger, configs []string) ([]*orchestrator.TaskHolder, error) {
	l := loader.New(logger)
	for _, path := range configs {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			err = l.AddFromDirectory(path)
		} else {
			err = l.AddFromFile(path)
		}
		if err != nil {
			return nil, err
		}
	}
	return l.TaskHolders(), nil
}

// BuildCrawlers строит crawler'ы для путей файловой системы.
func BuildCrawlers(paths []string) ([]crawler.Crawler, error) {
	crawlers := make([]crawler.Crawler, 0, len(paths))
	for _, path := range paths {
		c, err := crawler.NewPath(path)
		if err != nil {
			return nil, err
		}
		crawlers = append(crawlers, c)
	}
	return crawlers, nil
}

// RunTaskHolders выполняет каждое дерево над одним и тем же входом
// и объединяет результаты в порядке деревьев. Первая ошибка
// прерывает запуск.
func RunTaskHolders(ctx context.Context, runner *orchestrator.Runner, holders []*orchestrator.TaskHolder, crawlers []crawler.Crawler) ([]crawler.Crawler, domain.RunStats, error) {
	var (
		result []crawler.Crawler
		total  domain.RunStats
	)
	for _, h := range holders {
		produced, stats, err := runner.RunWithStats(ctx, h, crawlers)
		if err != nil {
			return nil, domain.RunStats{}, err
		}
		result = append(result, produced...)

		total.Executed += stats.Executed
		total.Bypassed += stats.Bypassed
		total.Ignored += stats.Ignored
		total.Skipped += stats.Skipped
		total.Produced += stats.Produced
	}
	return result, total, nil
}
