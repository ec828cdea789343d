// Package deps checks for the external binaries stitch shells out to.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// Requirement defines an external binary stitch invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to the binary to read its version.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Version     string
	Detail      string
}

// CheckBinaries resolves each requirement on PATH and, when asked, records the
// first line the binary prints for its version flag.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		if len(req.VersionArgs) > 0 {
			status.Version = readVersion(ctx, path, req.VersionArgs)
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

func readVersion(ctx context.Context, path string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
