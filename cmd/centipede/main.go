// Centipede — движок конвейеров обработки файлов.
//
// Использование:
//
//	centipede [--json] [--log-level LEVEL] <command> [flags]
//
// Команды:
//
//	run         Выполнить деревья задач над путями
//	history     Записанные запуски
//	inspect     Crawler для пути
//	resolve     Разрешить шаблон
//	procedures  Процедуры выражений
//	eval        Вызвать процедуру
//	tasks       Задачи и wrapper'ы
//
// Скрытая команда bootstrap — точка входа дочернего процесса
// subprocess wrapper'а: он запускает этот же бинарник.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/cli"
	"github.com/ramgopal99/centipede/internal/config"
	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/expression"
	"github.com/ramgopal99/centipede/internal/tasks"
	"github.com/ramgopal99/centipede/internal/telemetry"
	"github.com/ramgopal99/centipede/internal/wrapper"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	// Реестры заполняются до разбора конфигураций и до bootstrap
	expression.RegisterStandard(expression.Default())
	crawler.RegisterDefaults()
	tasks.RegisterDefaults()
	wrapper.RegisterDefaults(cfg.SubprocessTimeout)

	var jsonOutput bool
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "centipede",
		Short:         "Centipede — file pipeline engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := cfg.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			logger := telemetry.NewLogger(os.Stderr, telemetry.ParseLevel(level), cfg.LogFormat)
			cmd.SetContext(telemetry.WithLogger(cmd.Context(), logger))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")

	cfgFn := func() *config.Config { return cfg }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(cfgFn, outputFn),
		cli.NewHistoryCmd(cfgFn, outputFn),
		cli.NewInspectCmd(outputFn),
		cli.NewResolveCmd(outputFn),
		cli.NewProceduresCmd(outputFn),
		cli.NewEvalCmd(outputFn),
		cli.NewTasksCmd(outputFn),
		cli.NewBootstrapCmd(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
