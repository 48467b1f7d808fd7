package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/shipwright/internal/manifest"
)

// errUnsupportedMediaType is returned for request bodies that are neither
// JSON nor YAML.
var errUnsupportedMediaType = errors.New("unsupported media type")

// handleRender handles POST /render. The body is a recipe in JSON or YAML;
// the response is the rendered manifest as a download.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	recipe, err := decodeRecipe(r.Header.Get("Content-Type"), body)
	if err != nil {
		if errors.Is(err, errUnsupportedMediaType) {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		http.Error(w, fmt.Sprintf("Invalid recipe: %v", err), http.StatusBadRequest)
		return
	}

	// Absent steps mean the default order; an explicit empty list is kept.
	if recipe.Steps == nil {
		recipe.Steps = append([]manifest.Step(nil), manifest.DefaultSteps...)
	}

	for i, step := range recipe.Steps {
		if !step.IsKnown() {
			w.Header().Add(WarningHeader, fmt.Sprintf("step %d is not a known step and was ignored", i+1))
		}
	}

	artifact := manifest.Generate(recipe)

	w.Header().Set("Content-Type", artifact.MediaType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	_, _ = io.WriteString(w, artifact.Content)
}

// decodeRecipe decodes body according to contentType. A missing content
// type is treated as JSON. Unknown fields are rejected in both formats.
func decodeRecipe(contentType string, body []byte) (manifest.Recipe, error) {
	var recipe manifest.Recipe

	mediaType := "application/json"
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return recipe, fmt.Errorf("%w: %s", errUnsupportedMediaType, contentType)
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&recipe); err != nil {
			return recipe, fmt.Errorf("decode JSON: %w", err)
		}
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		dec := yaml.NewDecoder(bytes.NewReader(body))
		dec.KnownFields(true)
		if err := dec.Decode(&recipe); err != nil && !errors.Is(err, io.EOF) {
			return recipe, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return recipe, fmt.Errorf("%w: %s", errUnsupportedMediaType, mediaType)
	}

	return recipe, nil
}
