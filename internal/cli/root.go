// Package cli implements the enclave-resolver command line
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile   string
	EnvFiles     []string
	Format       string // "json" | "text"
	LogLevel     string
	MetricsFile  string
	OTLPEndpoint string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Version is stamped at build time
var Version = "dev"

// NewRootCommand creates the root command for the enclave-resolver CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "enclave-resolver",
		Short:         "Resolve participant security enclaves",
		Long:          "Locates each participant's security enclave directory and derives its security enforcement mode from ROS_SECURITY_* settings.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "path to a JSON or YAML configuration file")
	flags.StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv file overlaid on the security environment (repeatable)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	flags.StringVar(&opts.OTLPEndpoint, "otlp-endpoint", "", "export traces to this OTLP/HTTP URL")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewOptionsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
