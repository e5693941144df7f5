package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <participant>...",
		Short: "Print the secure root directory of each participant",
		Long: `Resolve prints the enclave directory of each fully-qualified participant name.
ROS_SECURITY_DIRECTORY_OVERRIDE wins over ROS_SECURITY_ROOT_DIRECTORY/<participant>.
The enable flag and strategy are not consulted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				return runResolve(cmd, rootOpts, s, args)
			})
		},
	}
}

func runResolve(cmd *cobra.Command, rootOpts *RootOptions, s *session, participants []string) error {
	results := make([]participantResult, 0, len(participants))
	var errs []error

	for _, name := range participants {
		path, err := s.builder.ResolveSecureRoot(name)
		if err != nil {
			errs = append(errs, err)
			results = append(results, participantResult{Participant: name, Error: err.Error()})
			continue
		}
		results = append(results, participantResult{Participant: name, SecureRoot: path})
	}

	if err := writeResults(cmd.OutOrStdout(), rootOpts.Format, results); err != nil {
		return err
	}
	return errors.Join(errs...)
}
