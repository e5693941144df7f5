package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

// NewOptionsCommand creates the options command.
func NewOptionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options <participant>...",
		Short: "Print the security options each participant would start with",
		Long: `Options derives the enforcement mode and secure root for each participant.
When ROS_SECURITY_ENABLE=true and ROS_SECURITY_STRATEGY=Enforce a missing
enclave directory is an error; it is never downgraded to permissive.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				return runOptions(ctx, cmd, rootOpts, s, args)
			})
		},
	}
}

func runOptions(ctx context.Context, cmd *cobra.Command, rootOpts *RootOptions, s *session, participants []string) error {
	results := make([]participantResult, 0, len(participants))
	var errs []error

	for _, name := range participants {
		opts, err := s.builder.Build(ctx, name)
		if err != nil {
			errs = append(errs, err)
			results = append(results, participantResult{Participant: name, Error: err.Error()})
			continue
		}
		results = append(results, participantResult{
			Participant:      name,
			EnforcementMode:  opts.EnforcementMode,
			SecurityRootPath: opts.SecurityRootPath,
		})
	}

	if err := writeResults(cmd.OutOrStdout(), rootOpts.Format, results); err != nil {
		return err
	}
	return errors.Join(errs...)
}
