package security

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
	"github.com/tuannvm/enclave-resolver/internal/common/logging"
)

// countingChecker records how often the filesystem is consulted
type countingChecker struct {
	calls int
	next  DirChecker
}

func (c *countingChecker) IsDir(path string) bool {
	c.calls++
	return c.next.IsDir(path)
}

func TestBuildPermissive(t *testing.T) {
	resources := newEnclaveTree(t)

	tests := []struct {
		name string
		env  MapEnvironment
	}{
		{
			name: "enable false with a valid override",
			env:  MapEnvironment{EnvEnable: "false", EnvDirectoryOverride: resources},
		},
		{
			name: "enable absent with a valid root",
			env:  MapEnvironment{EnvRootDirectory: resources, EnvStrategy: "Enforce"},
		},
		{
			name: "enable is case sensitive",
			env:  MapEnvironment{EnvEnable: "True", EnvStrategy: "Enforce", EnvDirectoryOverride: resources},
		},
		{
			name: "enable with surrounding space",
			env:  MapEnvironment{EnvEnable: " true", EnvStrategy: "Enforce", EnvDirectoryOverride: resources},
		},
		{
			name: "explicit permissive strategy",
			env:  MapEnvironment{EnvEnable: "true", EnvStrategy: "Permissive", EnvDirectoryOverride: resources},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &countingChecker{next: OSDirChecker{}}
			builder := NewSecurityOptionsBuilder(tt.env, NewEnclavePathResolver(checker))

			opts, err := builder.Build(context.Background(), "doesn't matter at all")
			require.NoError(t, err)
			assert.Equal(t, SecurityOptions{EnforcementMode: EnforcementPermissive}, opts)
			assert.False(t, opts.HasRootPath())
			assert.Zero(t, checker.calls, "resolver must not run when enforcement is off")
		})
	}
}

func TestBuildEnforce(t *testing.T) {
	resources := newEnclaveTree(t)

	t.Run("override", func(t *testing.T) {
		env := MapEnvironment{
			EnvEnable:            "true",
			EnvStrategy:          "Enforce",
			EnvDirectoryOverride: resources,
		}
		opts, err := NewSecurityOptionsBuilder(env, nil).Build(context.Background(), "doesn't matter at all")
		require.NoError(t, err)
		assert.Equal(t, EnforcementEnforce, opts.EnforcementMode)
		assert.Equal(t, resources, opts.SecurityRootPath)
	})

	t.Run("root directory", func(t *testing.T) {
		root := filepath.Join(resources, testSecurityDirectory)
		env := MapEnvironment{
			EnvEnable:        "true",
			EnvStrategy:      "Enforce",
			EnvRootDirectory: root,
		}
		opts, err := NewSecurityOptionsBuilder(env, nil).Build(context.Background(), "/"+testSecurityContext)
		require.NoError(t, err)
		assert.Equal(t, SecurityOptions{
			EnforcementMode:  EnforcementEnforce,
			SecurityRootPath: root + string(filepath.Separator) + testSecurityContext,
		}, opts)
	})
}

func TestBuildEnforceNotFound(t *testing.T) {
	resources := newEnclaveTree(t)

	tests := []struct {
		name          string
		env           MapEnvironment
		wantCode      string
		wantCandidate string
	}{
		{
			name:     "nothing configured",
			env:      MapEnvironment{EnvEnable: "true", EnvStrategy: "Enforce"},
			wantCode: customErrors.CodeConfigAbsent,
		},
		{
			name: "missing override",
			env: MapEnvironment{
				EnvEnable:            "true",
				EnvStrategy:          "Enforce",
				EnvDirectoryOverride: filepath.Join(resources, "missing"),
				EnvRootDirectory:     filepath.Join(resources, testSecurityDirectory),
			},
			wantCode:      customErrors.CodeDirectoryNotFound,
			wantCandidate: filepath.Join(resources, "missing"),
		},
		{
			name: "missing participant directory",
			env: MapEnvironment{
				EnvEnable:        "true",
				EnvStrategy:      "Enforce",
				EnvRootDirectory: resources,
			},
			wantCode:      customErrors.CodeDirectoryNotFound,
			wantCandidate: filepath.Join(resources, testSecurityContext),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := NewSecurityOptionsBuilder(tt.env, nil).Build(context.Background(), "/"+testSecurityContext)
			require.Error(t, err)
			assert.Equal(t, SecurityOptions{}, opts)
			assert.True(t, customErrors.Is(err, customErrors.ErrSecureRootNotFound))

			code, ok := customErrors.GetErrorCode(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, code)

			if tt.wantCandidate != "" {
				candidate, ok := customErrors.GetErrorData(err, "candidate")
				require.True(t, ok)
				assert.Equal(t, tt.wantCandidate, candidate)
				assert.Contains(t, err.Error(), tt.wantCandidate)
			}
		})
	}
}

func TestEnforcementPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RawConfig
		want     EnforcementMode
		wantCode string
	}{
		{name: "disabled", cfg: RawConfig{}, want: EnforcementPermissive},
		{name: "disabled ignores strategy", cfg: RawConfig{EnableFlag: Set("false"), Strategy: Set("bogus")}, want: EnforcementPermissive},
		{name: "enforce", cfg: RawConfig{EnableFlag: Set("true"), Strategy: Set("Enforce")}, want: EnforcementEnforce},
		{name: "permissive", cfg: RawConfig{EnableFlag: Set("true"), Strategy: Set("Permissive")}, want: EnforcementPermissive},
		{name: "strategy absent", cfg: RawConfig{EnableFlag: Set("true")}, wantCode: customErrors.CodeInvalidStrategy},
		{name: "strategy lower case", cfg: RawConfig{EnableFlag: Set("true"), Strategy: Set("enforce")}, wantCode: customErrors.CodeInvalidStrategy},
		{name: "strategy empty", cfg: RawConfig{EnableFlag: Set("true"), Strategy: Set("")}, wantCode: customErrors.CodeInvalidStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := EnforcementPolicy(tt.cfg)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, customErrors.Is(err, customErrors.ErrInvalidConfig))
				code, _ := customErrors.GetErrorCode(err)
				assert.Equal(t, tt.wantCode, code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestBuildInvalidStrategySkipsResolution(t *testing.T) {
	checker := &countingChecker{next: OSDirChecker{}}
	env := MapEnvironment{EnvEnable: "true", EnvStrategy: "Audit", EnvDirectoryOverride: t.TempDir()}

	_, err := NewSecurityOptionsBuilder(env, NewEnclavePathResolver(checker)).Build(context.Background(), "/talker")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Audit"`)
	assert.Zero(t, checker.calls)
}

func TestBuildIsIdempotent(t *testing.T) {
	resources := newEnclaveTree(t)
	env := MapEnvironment{EnvEnable: "true", EnvStrategy: "Enforce", EnvRootDirectory: resources}
	builder := NewSecurityOptionsBuilder(env, nil)
	name := "/" + testSecurityDirectory + "/" + testSecurityContext

	first, err := builder.Build(context.Background(), name)
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildLogsFoundDirectory(t *testing.T) {
	resources := newEnclaveTree(t)
	var buf bytes.Buffer
	logger := logging.NewWithWriter("security", logging.LevelInfo, &buf)

	env := MapEnvironment{EnvEnable: "true", EnvStrategy: "Enforce", EnvDirectoryOverride: resources}
	_, err := NewSecurityOptionsBuilder(env, nil, WithLogger(logger)).Build(context.Background(), "/talker")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Found security directory")
	assert.Contains(t, buf.String(), "path="+resources)
}

func TestBuildRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer(TracerName)

	resources := newEnclaveTree(t)
	ok := MapEnvironment{EnvEnable: "true", EnvStrategy: "Enforce", EnvDirectoryOverride: resources}
	_, err := NewSecurityOptionsBuilder(ok, nil, WithTracer(tracer)).Build(context.Background(), "/talker")
	require.NoError(t, err)

	bad := MapEnvironment{EnvEnable: "true", EnvStrategy: "Enforce"}
	_, err = NewSecurityOptionsBuilder(bad, nil, WithTracer(tracer)).Build(context.Background(), "/talker")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "security.build_options", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NotEmpty(t, spans[1].Events(), "error should be recorded as a span event")
}

func TestBuilderResolveSecureRoot(t *testing.T) {
	resources := newEnclaveTree(t)

	// resolution is independent of the enable flag
	env := MapEnvironment{EnvEnable: "false", EnvRootDirectory: resources}
	builder := NewSecurityOptionsBuilder(env, nil)

	path, err := builder.ResolveSecureRoot(testSecurityDirectory + "/" + testSecurityContext)
	require.NoError(t, err)
	assert.Equal(t, testSecurityContext, filepath.Base(path))

	_, err = builder.ResolveSecureRoot("absent")
	require.Error(t, err)
	code, _ := customErrors.GetErrorCode(err)
	assert.Equal(t, customErrors.CodeDirectoryNotFound, code)
}
