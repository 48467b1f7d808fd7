// Package session keeps an editable recipe between shipwright invocations.
//
// A session is a recipe plus the editing operations the CLI offers: append
// and pop dependencies, append and pop environment variables, and replace
// the step order. State lives in a YAML file guarded by a file lock so
// concurrent invocations do not lose edits.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/cameronsjo/shipwright/internal/manifest"
)

// envVarPrefix names environment variables added without an explicit name.
const envVarPrefix = "ENV_VAR_"

// ErrNoDependency is returned for a dependency position outside the list.
var ErrNoDependency = errors.New("no dependency at that position")

// Session is the persisted editing state.
type Session struct {
	manifest.Recipe `yaml:",inline"`

	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// New returns a session with the default port and step order.
func New() *Session {
	return &Session{
		Recipe: manifest.Recipe{
			Port:  manifest.DefaultPort,
			Steps: append([]manifest.Step(nil), manifest.DefaultSteps...),
		},
	}
}

// Snapshot returns a copy of the recipe that shares no memory with the
// session.
func (s *Session) Snapshot() manifest.Recipe {
	r := s.Recipe
	r.Dependencies = append([]string(nil), s.Dependencies...)
	r.Env = s.Env.Clone()
	r.Steps = append([]manifest.Step(nil), s.Steps...)
	return r
}

// AddDependency appends a dependency. Empty names are kept.
func (s *Session) AddDependency(name string) {
	s.Dependencies = append(s.Dependencies, name)
}

// RemoveDependency pops the last dependency and returns it.
func (s *Session) RemoveDependency() (string, bool) {
	n := len(s.Dependencies)
	if n == 0 {
		return "", false
	}
	last := s.Dependencies[n-1]
	s.Dependencies = s.Dependencies[:n-1]
	return last, true
}

// SetDependency replaces the dependency at 1-based position pos and returns
// the previous value.
func (s *Session) SetDependency(pos int, name string) (string, error) {
	if pos < 1 || pos > len(s.Dependencies) {
		return "", fmt.Errorf("%w: %d (have %d)", ErrNoDependency, pos, len(s.Dependencies))
	}
	old := s.Dependencies[pos-1]
	s.Dependencies[pos-1] = name
	return old, nil
}

// AddEnvVar appends an environment variable and returns its name. An empty
// name is replaced with ENV_VAR_<n>, where n is one more than the number of
// variables, bumped past any name already taken.
func (s *Session) AddEnvVar(name, value string) string {
	if name == "" {
		name = s.nextEnvName()
	}
	s.Env.Set(name, value)
	return name
}

func (s *Session) nextEnvName() string {
	for n := s.Env.Len() + 1; ; n++ {
		name := fmt.Sprintf("%s%d", envVarPrefix, n)
		if _, taken := s.Env.Get(name); !taken {
			return name
		}
	}
}

// RemoveEnvVar pops the last environment variable and returns it.
func (s *Session) RemoveEnvVar() (manifest.EnvVar, bool) {
	n := s.Env.Len()
	if n == 0 {
		return manifest.EnvVar{}, false
	}
	last := s.Env[n-1]
	s.Env = s.Env[:n-1]
	return last, true
}

// DeleteEnvVar removes the named variable, keeping the order of the rest.
func (s *Session) DeleteEnvVar(name string) bool {
	return s.Env.Delete(name)
}

// SetEnvVar sets a variable in place, appending it if it is new.
func (s *Session) SetEnvVar(name, value string) {
	s.Env.Set(name, value)
}

// SetSteps replaces the step order.
func (s *Session) SetSteps(steps []manifest.Step) {
	s.Steps = append([]manifest.Step(nil), steps...)
}
