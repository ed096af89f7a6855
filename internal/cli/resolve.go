package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/crawler"
	"github.com/ramgopal99/centipede/internal/engine"
)

// NewResolveCmd создаёт команду разрешения шаблона.
func NewResolveCmd(outputFn func() *Output) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "resolve TEMPLATE [NAME=VALUE...]",
		Short: "Resolve a template against variables",
		Long: "Resolves TEMPLATE with the given variables. With --path the variables of the\n" +
			"crawler built for that path are available too; NAME=VALUE pairs override them.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			scope := extra
			if path != "" {
				c, err := crawler.NewPath(path)
				if err != nil {
					return err
				}
				scope = engine.Scope(c, extra)
			}

			result, err := engine.Resolve(args[0], scope)
			if err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				out.JSON(map[string]string{"template": args[0], "result": result})
				return nil
			}
			out.Line(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Use the variables of the crawler built for this path")

	return cmd
}

// parseAssignments разбирает пары NAME=VALUE.
func parseAssignments(args []string) (map[string]any, error) {
	vars := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected NAME=VALUE, got %q", ErrInvalidArgument, arg)
		}
		vars[name] = value
	}
	return vars, nil
}
