// Package preflight runs environment checks before shipwright does real work.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
)

// Check is one environment check.
type Check struct {
	Name     string
	Required bool   // false = warning only
	Hint     string // e.g., "Install Docker: https://..."

	// Run returns a short detail on success.
	Run func(ctx context.Context) (string, error)
}

// Result is the outcome of running a Check.
type Result struct {
	Check  Check
	Detail string
	Err    error
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Err == nil
}

// RunAll runs checks in order. A cancelled context fails the remaining
// checks without running them.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Check: c, Err: err})
			continue
		}
		detail, err := c.Run(ctx)
		results = append(results, Result{Check: c, Detail: detail, Err: err})
	}
	return results
}

// Summarize splits failed results into warnings (optional checks) and
// errors (required checks), each as "name: problem (hint)".
func Summarize(results []Result) (warnings []string, errors []string) {
	for _, r := range results {
		if r.OK() {
			continue
		}
		msg := fmt.Sprintf("%s: %v", r.Check.Name, r.Err)
		if r.Check.Hint != "" {
			msg += " (" + r.Check.Hint + ")"
		}
		if r.Check.Required {
			errors = append(errors, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}
	return warnings, errors
}

// Binary checks that name is available in PATH.
func Binary(name string, required bool, hint string) Check {
	return Check{
		Name:     name,
		Required: required,
		Hint:     hint,
		Run: func(ctx context.Context) (string, error) {
			path, err := exec.LookPath(name)
			if err != nil {
				return "", fmt.Errorf("not found in PATH")
			}
			return path, nil
		},
	}
}
