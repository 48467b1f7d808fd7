package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidEnvVar is returned when an environment variable cannot be parsed.
var ErrInvalidEnvVar = errors.New("invalid environment variable")

// EnvVar is a single name/value pair.
type EnvVar struct {
	Name  string
	Value string
}

// String formats the pair the way ENV lines carry it.
func (e EnvVar) String() string {
	return e.Name + "=" + e.Value
}

// ParseEnvVar splits NAME=VALUE at the first '='. The value may be empty;
// the name may not.
func ParseEnvVar(s string) (EnvVar, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return EnvVar{}, fmt.Errorf("%w: %q (expected NAME=VALUE)", ErrInvalidEnvVar, s)
	}
	return EnvVar{Name: name, Value: value}, nil
}

// EnvVars is an ordered set of environment variables with unique names.
// Iteration order is insertion order.
type EnvVars []EnvVar

// Len returns the number of variables.
func (e EnvVars) Len() int {
	return len(e)
}

// Get returns the value for name.
func (e EnvVars) Get(name string) (string, bool) {
	if i := e.index(name); i >= 0 {
		return e[i].Value, true
	}
	return "", false
}

// Set replaces the value of an existing name in place, or appends a new pair.
func (e *EnvVars) Set(name, value string) {
	if i := e.index(name); i >= 0 {
		(*e)[i].Value = value
		return
	}
	*e = append(*e, EnvVar{Name: name, Value: value})
}

// Delete removes name, keeping the order of the rest. It reports whether
// the name was present.
func (e *EnvVars) Delete(name string) bool {
	i := e.index(name)
	if i < 0 {
		return false
	}
	*e = append((*e)[:i:i], (*e)[i+1:]...)
	return true
}

// Names returns the variable names in order.
func (e EnvVars) Names() []string {
	names := make([]string, len(e))
	for i, v := range e {
		names[i] = v.Name
	}
	return names
}

// Clone returns an independent copy.
func (e EnvVars) Clone() EnvVars {
	if e == nil {
		return nil
	}
	out := make(EnvVars, len(e))
	copy(out, e)
	return out
}

func (e EnvVars) index(name string) int {
	for i, v := range e {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// MarshalYAML encodes the variables as a mapping in order.
func (e EnvVars) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, v := range e {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes either a mapping (document order is kept) or a
// sequence of NAME=VALUE strings. Scalar values are taken as written, and
// null becomes the empty string.
func (e *EnvVars) UnmarshalYAML(value *yaml.Node) error {
	var out EnvVars
	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: %s: expected a scalar value, got %s", ErrInvalidEnvVar, key.Value, nodeKindName(val.Kind))
			}
			out.Set(key.Value, scalarText(val))
		}
	case yaml.SequenceNode:
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: expected NAME=VALUE, got %s", ErrInvalidEnvVar, nodeKindName(item.Kind))
			}
			v, err := ParseEnvVar(item.Value)
			if err != nil {
				return err
			}
			out.Set(v.Name, v.Value)
		}
	case yaml.ScalarNode:
		if value.Tag != "!!null" {
			return fmt.Errorf("%w: expected a mapping or list, got scalar %q", ErrInvalidEnvVar, value.Value)
		}
	default:
		return fmt.Errorf("%w: expected a mapping or list, got %s", ErrInvalidEnvVar, nodeKindName(value.Kind))
	}
	*e = out
	return nil
}

func scalarText(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

// MarshalJSON encodes the variables as an object in order.
func (e EnvVars) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order. String values are
// unquoted; numbers and booleans are kept as written; null becomes "".
func (e *EnvVars) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnvVar, err)
	}
	if tok == nil {
		*e = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected an object", ErrInvalidEnvVar)
	}

	var out EnvVars
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEnvVar, err)
		}
		name, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidEnvVar, name, err)
		}
		switch v := valTok.(type) {
		case string:
			out.Set(name, v)
		case json.Number:
			out.Set(name, v.String())
		case bool:
			out.Set(name, fmt.Sprintf("%t", v))
		case nil:
			out.Set(name, "")
		default:
			return fmt.Errorf("%w: %s: expected a scalar value", ErrInvalidEnvVar, name)
		}
	}
	*e = out
	return nil
}
