package cli

import (
	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/expression"
	"github.com/ramgopal99/centipede/internal/task"
	"github.com/ramgopal99/centipede/internal/wrapper"
)

// NewProceduresCmd создаёт команду списка процедур выражений.
func NewProceduresCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "procedures",
		Short: "List registered expression procedures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := expression.Default().Names()
			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{name}
			}
			outputFn().Print([]string{"PROCEDURE"}, rows, names)
			return nil
		},
	}
}

// NewEvalCmd создаёт команду вызова одной процедуры.
func NewEvalCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "eval NAME [ARG...]",
		Short: "Run an expression procedure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			procArgs := make([]any, len(args)-1)
			for i, a := range args[1:] {
				procArgs[i] = a
			}

			result, err := expression.Run(args[0], procArgs...)
			if err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				out.JSON(map[string]string{"procedure": args[0], "result": result})
				return nil
			}
			out.Line(result)
			return nil
		},
	}
}

// NewTasksCmd создаёт команду списка типов задач и wrapper'ов.
func NewTasksCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List registered task types and wrappers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			taskNames := task.Default().Names()
			wrapperNames := wrapper.Default().Names()

			var rows [][]string
			for _, name := range taskNames {
				rows = append(rows, []string{"task", name})
			}
			for _, name := range wrapperNames {
				rows = append(rows, []string{"wrapper", name})
			}

			outputFn().Print([]string{"KIND", "NAME"}, rows, map[string][]string{
				"tasks":    taskNames,
				"wrappers": wrapperNames,
			})
			return nil
		},
	}
}
