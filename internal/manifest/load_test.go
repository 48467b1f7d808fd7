package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecipe(t *testing.T) {
	recipe, err := LoadRecipe(filepath.Join("testdata", "flask.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "python:3.9-slim", recipe.BaseImage)
	assert.Equal(t, []string{"flask", "gunicorn"}, recipe.Dependencies)
	assert.Equal(t, Port("5000"), recipe.Port)
	assert.Equal(t, "python app.py", recipe.Command)
	assert.Equal(t, []string{"FLASK_ENV", "WORKERS", "DEBUG"}, recipe.Env.Names())
	assert.Equal(t, DefaultSteps, recipe.Steps)
}

func TestLoadRecipe_MissingFile(t *testing.T) {
	_, err := LoadRecipe(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRecipe_Template(t *testing.T) {
	content := []byte(`base_image: python:{{ .python }}-slim
dependencies:
{{- range .deps }}
  - {{ . }}
{{- end }}
command: {{ "python app.py" | quote }}
port: {{ .port | default 5000 }}
`)
	vars := map[string]any{
		"python": "3.11",
		"deps":   []string{"flask", "redis"},
		"port":   "",
	}

	recipe, err := ParseRecipe("recipe.yaml", content, vars)
	require.NoError(t, err)

	assert.Equal(t, "python:3.11-slim", recipe.BaseImage)
	assert.Equal(t, []string{"flask", "redis"}, recipe.Dependencies)
	assert.Equal(t, "python app.py", recipe.Command)
	assert.Equal(t, Port("5000"), recipe.Port)
}

func TestParseRecipe_EnvFunction(t *testing.T) {
	t.Setenv("SHIPWRIGHT_TEST_IMAGE", "golang:1.24")

	recipe, err := ParseRecipe("recipe.yaml", []byte(`base_image: {{ env "SHIPWRIGHT_TEST_IMAGE" }}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "golang:1.24", recipe.BaseImage)
}

func TestParseRecipe_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		vars    map[string]any
		errMsg  string
	}{
		{"missing var", "base_image: {{ .image }}", nil, "render template"},
		{"bad template", "base_image: {{ .image", nil, "parse template"},
		{"unknown key", "base_image: alpine\nbase: alpine\n", nil, "parse recipe"},
		{"bad env", "env: [NOPE]\n", nil, "parse recipe"},
		{"bad port", "port: [1, 2]\n", nil, "parse recipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecipe("recipe.yaml", []byte(tt.content), tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseRecipe_Empty(t *testing.T) {
	recipe, err := ParseRecipe("recipe.yaml", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &Recipe{}, recipe)
}

func TestMarshalRecipe_RoundTrip(t *testing.T) {
	orig := flaskRecipe()
	orig.Env = EnvVars{{"Z", "1"}, {"A", "2"}}

	data, err := MarshalRecipe(&orig)
	require.NoError(t, err)

	loaded, err := ParseRecipe("roundtrip.yaml", data, nil)
	require.NoError(t, err)
	assert.Equal(t, orig, *loaded)
	assert.Equal(t, Render(orig), Render(*loaded))
}
