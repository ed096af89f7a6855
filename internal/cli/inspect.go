package cli

import (
	"github.com/spf13/cobra"
)

// NewInspectCmd создаёт команду просмотра crawler'ов для путей.
func NewInspectCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PATH...",
		Short: "Show the crawler built for each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crawlers, err := BuildCrawlers(args)
			if err != nil {
				return err
			}
			outputFn().Crawlers(crawlers)
			return nil
		},
	}
}
