package manifest

import (
	"fmt"

	"github.com/distribution/reference"
	"github.com/docker/go-connections/nat"
)

// Severity ranks a lint finding.
type Severity string

const (
	// SeverityWarning marks input that renders but probably builds wrong.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks input that is legal but unusual.
	SeverityInfo Severity = "info"
)

// Finding is one lint observation about a recipe.
type Finding struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// Lint inspects a recipe for input the renderer will accept but a Docker
// build is likely to reject. It never changes what Render produces.
func Lint(r Recipe) []Finding {
	var findings []Finding
	warn := func(field, format string, args ...any) {
		findings = append(findings, Finding{SeverityWarning, field, fmt.Sprintf(format, args...)})
	}
	info := func(field, format string, args ...any) {
		findings = append(findings, Finding{SeverityInfo, field, fmt.Sprintf(format, args...)})
	}

	if r.BaseImage == "" {
		warn("base_image", "base image is empty")
	} else if _, err := reference.ParseNormalizedNamed(r.BaseImage); err != nil {
		warn("base_image", "%q is not a valid image reference: %v", r.BaseImage, err)
	}

	used := make(map[Step]int, len(r.Steps))
	for i, step := range r.Steps {
		if !step.IsKnown() {
			warn("steps", "step %d is not a known step and will be ignored", i+1)
			continue
		}
		used[step]++
		if used[step] == 2 {
			info("steps", "%s appears more than once; its instructions will repeat", step)
		}
	}

	if used[StepExposePort] > 0 {
		if msg := checkPort(r.Port); msg != "" {
			warn("port", "%s", msg)
		}
	}

	if used[StepRunCommand] > 0 && r.Command == "" {
		warn("command", "command is empty")
	}

	if used[StepInstallDependencies] > 0 {
		if len(r.Dependencies) == 0 {
			info("dependencies", "%s is selected but there are no dependencies", StepInstallDependencies)
		}
		for i, dep := range r.Dependencies {
			if dep == "" {
				warn("dependencies", "dependency %d is empty", i+1)
			}
		}
	}

	if used[StepSetEnvVars] > 0 && len(r.Env) == 0 {
		info("env", "%s is selected but there are no environment variables", StepSetEnvVars)
	}
	for _, v := range r.Env {
		if v.Name == "" {
			warn("env", "environment variable with value %q has an empty name", v.Value)
		}
	}

	return findings
}

// checkPort returns a problem description, or "" if port is a usable
// EXPOSE argument such as "5000", "5000/udp" or "8000-8010".
func checkPort(port Port) string {
	if port == "" {
		return "port is empty"
	}
	proto, ports := nat.SplitProtoPort(string(port))
	if ports == "" {
		return fmt.Sprintf("%q has no port number", port)
	}
	switch proto {
	case "tcp", "udp", "sctp":
	default:
		return fmt.Sprintf("%q uses unsupported protocol %q", port, proto)
	}
	start, end, err := nat.ParsePortRange(ports)
	if err != nil {
		return fmt.Sprintf("%q is not a port or port range: %v", port, err)
	}
	if start == 0 || end == 0 {
		return fmt.Sprintf("%q includes port 0", port)
	}
	return ""
}
