package security

import (
	"context"
)

// ResolveSecureRoot resolves participantName against the current process
// environment and local filesystem
func ResolveSecureRoot(participantName string) (string, error) {
	return NewSecurityOptionsBuilder(ProcessEnvironment{}, nil).ResolveSecureRoot(participantName)
}

// BuildSecurityOptions builds participantName's security options from the current
// process environment and local filesystem
func BuildSecurityOptions(ctx context.Context, participantName string) (SecurityOptions, error) {
	return NewSecurityOptionsBuilder(ProcessEnvironment{}, nil).Build(ctx, participantName)
}
