package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/config"
	"github.com/ramgopal99/centipede/internal/domain"
	"github.com/ramgopal99/centipede/internal/repo"
)

// NewHistoryCmd создаёт команду просмотра истории запусков.
func NewHistoryCmd(cfgFn func() *config.Config, outputFn func() *Output) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			out := outputFn()

			pool, err := repo.NewPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repo.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}

			runs, err := repo.NewRunRepo(pool).List(cmd.Context(), repo.RunFilter{
				Status: domain.RunStatus(strings.ToUpper(status)),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "STATUS", "CONFIGS", "EXECUTED", "PRODUCED", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID.String(),
					string(r.Status),
					strings.Join(r.Configs, ","),
					strconv.Itoa(r.Stats.Executed),
					strconv.Itoa(r.Stats.Produced),
					r.CreatedAt.Format("2006-01-02 15:04:05"),
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (RUNNING, SUCCEEDED, FAILED, CANCELLED)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}
