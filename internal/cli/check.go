package cli

import (
	"context"

	"github.com/spf13/cobra"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build security options for every participant in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				if len(s.cfg.Participants) == 0 {
					return customErrors.NewConfigError("no_participants", "no participants configured; set \"participants\" in the config file")
				}
				s.logger.InfoKV("Checking participants", "count", len(s.cfg.Participants))
				return runOptions(ctx, cmd, rootOpts, s, s.cfg.Participants)
			})
		},
	}
}
