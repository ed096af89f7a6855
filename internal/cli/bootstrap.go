package cli

import (
	"github.com/spf13/cobra"

	"github.com/ramgopal99/centipede/internal/wrapper"
)

// NewBootstrapCmd создаёт скрытую команду, которую subprocess
// wrapper запускает в дочернем процессе.
func NewBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:                wrapper.BootstrapCommand + " REQUEST RESPONSE",
		Short:              "Run one task from a serialized request (used by the subprocess wrapper)",
		Hidden:             true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := wrapper.BootstrapMain(cmd.Context(), args, cmd.ErrOrStderr()); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}
