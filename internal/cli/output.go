package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tuannvm/enclave-resolver/internal/security"
)

// participantResult is one line of command output
type participantResult struct {
	Participant      string                   `json:"participant"`
	SecureRoot       string                   `json:"secure_root,omitempty"`
	EnforcementMode  security.EnforcementMode `json:"enforcement_mode,omitempty"`
	SecurityRootPath string                   `json:"security_root_path,omitempty"`
	Error            string                   `json:"error,omitempty"`
}

// writeResults renders results in the requested format
func writeResults(w io.Writer, format string, results []participantResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(tw, "%s\tERROR\t%s\n", r.Participant, r.Error)
		case r.EnforcementMode != "":
			path := r.SecurityRootPath
			if path == "" {
				path = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Participant, r.EnforcementMode, path)
		default:
			fmt.Fprintf(tw, "%s\t%s\n", r.Participant, r.SecureRoot)
		}
	}
	return tw.Flush()
}
