package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// LoadRecipe reads a recipe file, renders it as a Go template with sprig
// functions and vars as the root context, then decodes the YAML result.
func LoadRecipe(path string, vars map[string]any) (*Recipe, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}

	recipe, err := ParseRecipe(filepath.Base(path), content, vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipe, nil
}

// ParseRecipe renders and decodes recipe content. Unknown YAML keys and
// template references to missing vars are errors. Empty content yields an
// empty recipe.
func ParseRecipe(name string, content []byte, vars map[string]any) (*Recipe, error) {
	rendered, err := renderRecipeTemplate(name, content, vars)
	if err != nil {
		return nil, err
	}

	var recipe Recipe
	dec := yaml.NewDecoder(bytes.NewReader(rendered))
	dec.KnownFields(true)
	if err := dec.Decode(&recipe); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}

	return &recipe, nil
}

func renderRecipeTemplate(name string, content []byte, vars map[string]any) ([]byte, error) {
	if vars == nil {
		vars = map[string]any{}
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalRecipe encodes a recipe as YAML.
func MarshalRecipe(r *Recipe) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal recipe: %w", err)
	}
	return data, nil
}
