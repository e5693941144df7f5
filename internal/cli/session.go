package cli

import (
	"context"

	"github.com/spf13/cobra"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
	"github.com/tuannvm/enclave-resolver/internal/common/logging"
	"github.com/tuannvm/enclave-resolver/internal/config"
	"github.com/tuannvm/enclave-resolver/internal/monitoring"
	"github.com/tuannvm/enclave-resolver/internal/observability"
	"github.com/tuannvm/enclave-resolver/internal/security"
)

// session is the per-invocation state shared by every subcommand
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	builder  *security.SecurityOptionsBuilder
	shutdown observability.ShutdownFunc
}

// openSession loads configuration, applies flag overrides, installs tracing and
// snapshots the security environment once
func openSession(ctx context.Context, cmd *cobra.Command, opts *RootOptions) (*session, error) {
	bootstrap := logging.NewWithWriter("enclave-resolver", logging.LevelWarn, cmd.ErrOrStderr())

	cfg, err := config.LoadConfig(opts.ConfigFile, bootstrap)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, opts)
	if err := cfg.ValidateAfterDefaults(); err != nil {
		return nil, err
	}

	logger := logging.NewWithWriter("enclave-resolver", logging.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())
	logger.DebugKV("Configuration loaded",
		"config_file", opts.ConfigFile,
		"env_files", len(cfg.EnvFiles),
		"participants", len(cfg.Participants),
	)

	shutdown, err := observability.Setup(ctx, observability.TracingConfig{
		Endpoint:       cfg.Tracing.Endpoint,
		ServiceVersion: Version,
	}, logger.WithName("observability"))
	if err != nil {
		return nil, err
	}

	env, err := security.SnapshotEnvironment(cfg.EnvFiles...)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	builder := security.NewSecurityOptionsBuilder(env, security.NewEnclavePathResolver(nil),
		security.WithLogger(logger.WithName("security")))

	return &session{
		cfg:      cfg,
		logger:   logger,
		builder:  builder,
		shutdown: shutdown,
	}, nil
}

// applyFlagOverrides lets explicit flags win over file and environment settings
func applyFlagOverrides(cfg *config.Config, opts *RootOptions) {
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if len(opts.EnvFiles) > 0 {
		cfg.EnvFiles = opts.EnvFiles
	}
	if opts.MetricsFile != "" {
		cfg.Metrics.TextfilePath = opts.MetricsFile
	}
	if opts.OTLPEndpoint != "" {
		cfg.Tracing.Endpoint = opts.OTLPEndpoint
	}
}

// close flushes traces and writes the metrics textfile
func (s *session) close(ctx context.Context) error {
	var exportErr error
	if err := s.shutdown(ctx); err != nil {
		s.logger.WarnKV("Failed to flush traces", "error", err)
	}
	if path := s.cfg.Metrics.TextfilePath; path != "" {
		if err := monitoring.WriteTextfile(path); err != nil {
			exportErr = customErrors.WrapInternalError(err, "metrics_export", "failed to export metrics")
		} else {
			s.logger.DebugKV("Wrote metrics textfile", "path", path)
		}
	}
	return exportErr
}

// withSession runs fn inside an open session and always closes it
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}

	runErr := fn(ctx, s)
	closeErr := s.close(ctx)
	if runErr != nil {
		return runErr
	}
	return closeErr
}
