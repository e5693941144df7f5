// Package security resolves a participant's security enclave directory and
// derives the security options used to configure transport security.
package security

import (
	"os"

	"github.com/joho/godotenv"

	customErrors "github.com/tuannvm/enclave-resolver/internal/common/errors"
)

// Recognized environment variable names
const (
	EnvRootDirectory     = "ROS_SECURITY_ROOT_DIRECTORY"
	EnvDirectoryOverride = "ROS_SECURITY_DIRECTORY_OVERRIDE"
	EnvEnable            = "ROS_SECURITY_ENABLE"
	EnvStrategy          = "ROS_SECURITY_STRATEGY"
)

// EnvironmentKeys lists every variable read by ReadRawConfig
var EnvironmentKeys = []string{
	EnvRootDirectory,
	EnvDirectoryOverride,
	EnvEnable,
	EnvStrategy,
}

// EnvValue is an optional environment string
type EnvValue struct {
	Value   string
	Present bool
}

// Set returns a present EnvValue
func Set(value string) EnvValue {
	return EnvValue{Value: value, Present: true}
}

// NonEmpty reports whether the value is present and not the empty string
func (v EnvValue) NonEmpty() bool {
	return v.Present && v.Value != ""
}

// RawConfig is the uninterpreted security configuration of one resolution call
type RawConfig struct {
	RootDirectory     EnvValue
	DirectoryOverride EnvValue
	EnableFlag        EnvValue
	Strategy          EnvValue
}

// LookupFunc is a key to string lookup primitive with the semantics of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ReadRawConfig looks up the four recognized keys. Absent keys are not an error.
func ReadRawConfig(lookup LookupFunc) RawConfig {
	get := func(key string) EnvValue {
		value, ok := lookup(key)
		return EnvValue{Value: value, Present: ok}
	}
	return RawConfig{
		RootDirectory:     get(EnvRootDirectory),
		DirectoryOverride: get(EnvDirectoryOverride),
		EnableFlag:        get(EnvEnable),
		Strategy:          get(EnvStrategy),
	}
}

// EnvironmentConfigReader produces a RawConfig snapshot
type EnvironmentConfigReader interface {
	Read() RawConfig
}

// ProcessEnvironment reads the live process environment
type ProcessEnvironment struct{}

// Read implements EnvironmentConfigReader
func (ProcessEnvironment) Read() RawConfig {
	return ReadRawConfig(os.LookupEnv)
}

// MapEnvironment is a fixed environment snapshot
type MapEnvironment map[string]string

// Read implements EnvironmentConfigReader
func (m MapEnvironment) Read() RawConfig {
	return ReadRawConfig(m.Lookup)
}

// Lookup implements LookupFunc over the map
func (m MapEnvironment) Lookup(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

// SnapshotEnvironment captures the recognized keys from the process environment,
// then overlays any keys defined in the given dotenv files. Files are read, never
// applied to the process environment.
func SnapshotEnvironment(dotenvFiles ...string) (MapEnvironment, error) {
	snapshot := MapEnvironment{}
	for _, key := range EnvironmentKeys {
		if value, ok := os.LookupEnv(key); ok {
			snapshot[key] = value
		}
	}

	if len(dotenvFiles) == 0 {
		return snapshot, nil
	}

	values, err := godotenv.Read(dotenvFiles...)
	if err != nil {
		return nil, customErrors.WrapConfigError(err, "dotenv_read", "failed to read dotenv file")
	}
	for _, key := range EnvironmentKeys {
		if value, ok := values[key]; ok {
			snapshot[key] = value
		}
	}
	return snapshot, nil
}
