package security

import (
	"os"
	"path/filepath"
)

// CandidateSource names the configuration that produced a lookup candidate
type CandidateSource string

const (
	SourceNone          CandidateSource = "none"
	SourceOverride      CandidateSource = "override"
	SourceRootDirectory CandidateSource = "root_directory"
)

// LookupOutcome is the result of one enclave lookup.
// When Found is false, Candidate holds the path that was checked, if any.
type LookupOutcome struct {
	Found     bool
	Path      string
	Candidate string
	Source    CandidateSource
}

// DirChecker reports whether a path exists and is a directory
type DirChecker interface {
	IsDir(path string) bool
}

// DirCheckerFunc adapts a function to DirChecker
type DirCheckerFunc func(path string) bool

// IsDir implements DirChecker
func (f DirCheckerFunc) IsDir(path string) bool {
	return f(path)
}

// OSDirChecker checks the local filesystem
type OSDirChecker struct{}

// IsDir implements DirChecker
func (OSDirChecker) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnclavePathResolver maps a participant name to its enclave directory
type EnclavePathResolver struct {
	dirs DirChecker
}

// NewEnclavePathResolver creates a resolver. A nil checker uses the local filesystem.
func NewEnclavePathResolver(dirs DirChecker) *EnclavePathResolver {
	if dirs == nil {
		dirs = OSDirChecker{}
	}
	return &EnclavePathResolver{dirs: dirs}
}

// Resolve applies override, then root directory, precedence. A non-empty override is
// used as-is and the participant name is ignored. Empty values count as unset.
func (r *EnclavePathResolver) Resolve(participantName string, cfg RawConfig) LookupOutcome {
	if cfg.DirectoryOverride.NonEmpty() {
		return r.check(cfg.DirectoryOverride.Value, SourceOverride)
	}

	if cfg.RootDirectory.NonEmpty() {
		return r.check(JoinParticipant(cfg.RootDirectory.Value, participantName), SourceRootDirectory)
	}

	return LookupOutcome{Source: SourceNone}
}

func (r *EnclavePathResolver) check(candidate string, source CandidateSource) LookupOutcome {
	if r.dirs.IsDir(candidate) {
		return LookupOutcome{Found: true, Path: candidate, Candidate: candidate, Source: source}
	}
	return LookupOutcome{Candidate: candidate, Source: source}
}

// JoinParticipant joins a slash-delimited participant name under base.
// The name is rooted before cleaning so a leading separator or ".." segments
// cannot climb above base.
func JoinParticipant(base, participantName string) string {
	name := filepath.Clean(string(filepath.Separator) + filepath.FromSlash(participantName))
	return filepath.Join(base, name)
}
