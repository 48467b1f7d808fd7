package manifest

import "strings"

// Step identifies one kind of build instruction and controls where the
// renderer emits it. The set is closed: anything outside the six known
// steps parses to StepUnknown and renders nothing.
type Step int

const (
	// StepUnknown is any step text that does not name one of the known steps.
	StepUnknown Step = iota

	// StepSetWorkdir emits WORKDIR /app.
	StepSetWorkdir

	// StepCopyFiles emits COPY . /app.
	StepCopyFiles

	// StepInstallDependencies emits one RUN pip install line per dependency.
	StepInstallDependencies

	// StepExposePort emits EXPOSE with the configured port.
	StepExposePort

	// StepSetEnvVars emits one ENV line per environment variable.
	StepSetEnvVars

	// StepRunCommand emits CMD with the command as a single-element list.
	StepRunCommand
)

// DefaultSteps is the order the steps are offered in when a caller does not
// choose one.
var DefaultSteps = []Step{
	StepSetWorkdir,
	StepCopyFiles,
	StepInstallDependencies,
	StepExposePort,
	StepSetEnvVars,
	StepRunCommand,
}

type stepNames struct {
	id    string
	label string
}

var stepTable = map[Step]stepNames{
	StepSetWorkdir:          {"SetWorkdir", "Set WORKDIR"},
	StepCopyFiles:           {"CopyFiles", "Copy Files"},
	StepInstallDependencies: {"InstallDependencies", "Install Dependencies"},
	StepExposePort:          {"ExposePort", "Expose Port"},
	StepSetEnvVars:          {"SetEnvVars", "Set Environment Variables"},
	StepRunCommand:          {"RunCommand", "Run Command"},
}

// stepLookup maps the folded form of every identifier and label to its step.
var stepLookup = func() map[string]Step {
	m := make(map[string]Step, len(stepTable)*2)
	for step, names := range stepTable {
		m[foldStepName(names.id)] = step
		m[foldStepName(names.label)] = step
	}
	return m
}()

// foldStepName lowercases s and drops spaces, dashes and underscores so
// "Set WORKDIR", "set-workdir" and "SetWorkdir" compare equal.
func foldStepName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(s))
}

// ParseStep resolves a step identifier or display label. It never fails:
// text that names no known step yields StepUnknown.
func ParseStep(s string) Step {
	if step, ok := stepLookup[foldStepName(s)]; ok {
		return step
	}
	return StepUnknown
}

// ParseSteps resolves each entry with ParseStep, keeping order, duplicates
// and unknown entries.
func ParseSteps(names []string) []Step {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, ParseStep(name))
	}
	return steps
}

// IsKnown reports whether s is one of the six renderable steps.
func (s Step) IsKnown() bool {
	_, ok := stepTable[s]
	return ok
}

// String returns the step identifier, e.g. "SetWorkdir".
func (s Step) String() string {
	if names, ok := stepTable[s]; ok {
		return names.id
	}
	return "Unknown"
}

// Label returns the display label, e.g. "Set WORKDIR".
func (s Step) Label() string {
	if names, ok := stepTable[s]; ok {
		return names.label
	}
	return "Unknown"
}

// Instruction returns the Dockerfile keyword the step emits.
func (s Step) Instruction() string {
	switch s {
	case StepSetWorkdir:
		return "WORKDIR"
	case StepCopyFiles:
		return "COPY"
	case StepInstallDependencies:
		return "RUN"
	case StepExposePort:
		return "EXPOSE"
	case StepSetEnvVars:
		return "ENV"
	case StepRunCommand:
		return "CMD"
	}
	return ""
}

// MarshalText encodes the step as its identifier. StepUnknown encodes as
// "Unknown", which decodes back to StepUnknown.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes an identifier or label. Unknown text decodes to
// StepUnknown without error.
func (s *Step) UnmarshalText(text []byte) error {
	*s = ParseStep(string(text))
	return nil
}
