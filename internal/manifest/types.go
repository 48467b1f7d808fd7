package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the port offered to callers that do not choose one.
	DefaultPort Port = "5000"

	// FileName is the conventional name for a rendered manifest on disk.
	FileName = "Dockerfile"

	// MediaType is the content type of a rendered manifest.
	MediaType = "text/plain"

	// Workdir is the directory WORKDIR and COPY target.
	Workdir = "/app"
)

// Recipe holds every input to a single render.
type Recipe struct {
	// BaseImage names the starting image (e.g. "python:3.9-slim"). Copied
	// verbatim into the FROM line.
	BaseImage string `yaml:"base_image" json:"base_image"`

	// Dependencies are installed one RUN line each, in order.
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// Port is exposed as written.
	Port Port `yaml:"port,omitempty" json:"port,omitempty"`

	// Command is the startup command.
	Command string `yaml:"command,omitempty" json:"command,omitempty"`

	// Env holds environment variables in insertion order.
	Env EnvVars `yaml:"env,omitempty" json:"env,omitempty"`

	// Steps controls which instructions are emitted and in what order.
	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Artifact is a rendered manifest ready to be offered as a download.
type Artifact struct {
	Content   string
	FileName  string
	MediaType string
}

// Port is a network port as the caller wrote it. It is never validated;
// numbers in YAML or JSON input are accepted and kept as text.
type Port string

// String returns the port text.
func (p Port) String() string {
	return string(p)
}

// UnmarshalYAML accepts any scalar.
func (p *Port) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("port: expected a scalar, got %s", nodeKindName(value.Kind))
	}
	if value.Tag == "!!null" {
		*p = ""
		return nil
	}
	*p = Port(value.Value)
	return nil
}

// UnmarshalJSON accepts a string or a number.
func (p *Port) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*p = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("port: %w", err)
		}
		*p = Port(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("port: expected a string or number: %w", err)
		}
		*p = Port(n.String())
	}
	return nil
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown node"
}
