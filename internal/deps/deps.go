// Package deps reports whether external executables the CLI launches can be
// resolved.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external executable tab relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// DaemonRequirement describes the daemon executable started by bootstrap.
func DaemonRequirement(command string) Requirement {
	return Requirement{
		Name:        "Daemon binary",
		Command:     command,
		Description: "started when no daemon is running",
	}
}

// Check resolves a single requirement through PATH.
func Check(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}
