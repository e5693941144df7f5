package security

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
	"github.com/tuannvm/enclave-resolver/internal/common/logging"
	"github.com/tuannvm/enclave-resolver/internal/monitoring"
)

// TracerName is the instrumentation scope used for security spans
const TracerName = "github.com/tuannvm/enclave-resolver/internal/security"

// Literal values recognized in the environment
const (
	EnableValue        = "true"
	StrategyEnforce    = "Enforce"
	StrategyPermissive = "Permissive"
)

// EnforcementMode selects whether security material is required
type EnforcementMode string

const (
	// EnforcementPermissive bypasses security checks
	EnforcementPermissive EnforcementMode = "Permissive"
	// EnforcementEnforce requires a resolved enclave directory
	EnforcementEnforce EnforcementMode = "Enforce"
)

// SecurityOptions is the finished value handed to the transport layer.
// SecurityRootPath is only ever set under EnforcementEnforce.
type SecurityOptions struct {
	EnforcementMode  EnforcementMode `json:"enforcement_mode"`
	SecurityRootPath string          `json:"security_root_path,omitempty"`
}

// HasRootPath reports whether a secure root was resolved
func (o SecurityOptions) HasRootPath() bool {
	return o.SecurityRootPath != ""
}

// SecurityOptionsBuilder assembles SecurityOptions for participants
type SecurityOptionsBuilder struct {
	env      EnvironmentConfigReader
	resolver *EnclavePathResolver
	logger   *logging.Logger
	tracer   trace.Tracer
}

// BuilderOption configures a SecurityOptionsBuilder
type BuilderOption func(*SecurityOptionsBuilder)

// WithLogger sets the builder's logger
func WithLogger(logger *logging.Logger) BuilderOption {
	return func(b *SecurityOptionsBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTracer sets the tracer used for build spans
func WithTracer(tracer trace.Tracer) BuilderOption {
	return func(b *SecurityOptionsBuilder) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

// NewSecurityOptionsBuilder creates a builder over an environment snapshot and resolver.
// A nil resolver checks the local filesystem.
func NewSecurityOptionsBuilder(env EnvironmentConfigReader, resolver *EnclavePathResolver, opts ...BuilderOption) *SecurityOptionsBuilder {
	if resolver == nil {
		resolver = NewEnclavePathResolver(nil)
	}
	b := &SecurityOptionsBuilder{
		env:      env,
		resolver: resolver,
		logger:   logging.Discard(),
		tracer:   otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ResolveSecureRoot returns the participant's enclave directory regardless of
// whether security is enabled
func (b *SecurityOptionsBuilder) ResolveSecureRoot(participantName string) (string, error) {
	outcome := b.resolver.Resolve(participantName, b.env.Read())
	monitoring.RecordResolution(string(outcome.Source), outcome.Found)
	if !outcome.Found {
		return "", notFoundError(participantName, outcome)
	}
	return outcome.Path, nil
}

// Build reads the environment once and produces the participant's SecurityOptions.
// The resolver only runs when enforcement is requested, and a failed lookup under
// enforcement is returned as an error rather than downgraded.
func (b *SecurityOptionsBuilder) Build(ctx context.Context, participantName string) (SecurityOptions, error) {
	_, span := b.tracer.Start(ctx, "security.build_options",
		trace.WithAttributes(attribute.String("security.participant", participantName)))
	defer span.End()

	opts, err := b.build(participantName)
	monitoring.RecordOptions(string(opts.EnforcementMode), err == nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "security options unavailable")
		return SecurityOptions{}, err
	}

	span.SetAttributes(
		attribute.String("security.enforcement_mode", string(opts.EnforcementMode)),
		attribute.String("security.root_path", opts.SecurityRootPath),
	)
	span.SetStatus(codes.Ok, "")
	return opts, nil
}

func (b *SecurityOptionsBuilder) build(participantName string) (SecurityOptions, error) {
	cfg := b.env.Read()

	mode, err := EnforcementPolicy(cfg)
	if err != nil {
		b.logger.ErrorKV("Rejected security strategy", "participant", participantName, "strategy", cfg.Strategy.Value)
		return SecurityOptions{EnforcementMode: EnforcementEnforce}, err
	}
	if mode == EnforcementPermissive {
		b.logger.DebugKV("Security enforcement is permissive", "participant", participantName)
		return SecurityOptions{EnforcementMode: EnforcementPermissive}, nil
	}

	outcome := b.resolver.Resolve(participantName, cfg)
	monitoring.RecordResolution(string(outcome.Source), outcome.Found)
	if !outcome.Found {
		b.logger.WarnKV("Security enforcement requested but no security directory resolved",
			"participant", participantName,
			"source", outcome.Source,
			"candidate", outcome.Candidate,
		)
		return SecurityOptions{EnforcementMode: EnforcementEnforce}, notFoundError(participantName, outcome)
	}

	b.logger.InfoKV("Found security directory", "participant", participantName, "path", outcome.Path)
	return SecurityOptions{
		EnforcementMode:  EnforcementEnforce,
		SecurityRootPath: outcome.Path,
	}, nil
}

// EnforcementPolicy derives the enforcement mode from the enable flag and strategy.
// Only the exact value "true" enables security. Once enabled, an absent or
// unrecognized strategy is a configuration error.
func EnforcementPolicy(cfg RawConfig) (EnforcementMode, error) {
	if !cfg.EnableFlag.Present || cfg.EnableFlag.Value != EnableValue {
		return EnforcementPermissive, nil
	}

	switch {
	case cfg.Strategy.Present && cfg.Strategy.Value == StrategyEnforce:
		return EnforcementEnforce, nil
	case cfg.Strategy.Present && cfg.Strategy.Value == StrategyPermissive:
		return EnforcementPermissive, nil
	case !cfg.Strategy.Present:
		return "", customErrors.WrapSecurityError(customErrors.ErrInvalidConfig, customErrors.CodeInvalidStrategy,
			fmt.Sprintf("%s=%s but %s is not set", EnvEnable, EnableValue, EnvStrategy)).
			WithData("variable", EnvStrategy)
	default:
		return "", customErrors.WrapSecurityError(customErrors.ErrInvalidConfig, customErrors.CodeInvalidStrategy,
			fmt.Sprintf("unrecognized %s %q: expected %q or %q", EnvStrategy, cfg.Strategy.Value, StrategyEnforce, StrategyPermissive)).
			WithData("variable", EnvStrategy).
			WithData("strategy", cfg.Strategy.Value)
	}
}

func notFoundError(participantName string, outcome LookupOutcome) error {
	if outcome.Source == SourceNone {
		return customErrors.WrapSecurityError(customErrors.ErrSecureRootNotFound, customErrors.CodeConfigAbsent,
			fmt.Sprintf("no security directory configured for %q: neither %s nor %s is set",
				participantName, EnvDirectoryOverride, EnvRootDirectory)).
			WithData("participant", participantName).
			WithData("source", string(outcome.Source))
	}

	variable := EnvRootDirectory
	if outcome.Source == SourceOverride {
		variable = EnvDirectoryOverride
	}
	return customErrors.WrapSecurityError(customErrors.ErrSecureRootNotFound, customErrors.CodeDirectoryNotFound,
		fmt.Sprintf("security directory %q for %q (from %s) does not exist or is not a directory",
			outcome.Candidate, participantName, variable)).
		WithData("participant", participantName).
		WithData("candidate", outcome.Candidate).
		WithData("source", string(outcome.Source))
}
