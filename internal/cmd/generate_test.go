package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/shipwright/internal/config"
)

const flaskDockerfile = "FROM python:3.9-slim\n" +
	"\n" +
	"WORKDIR /app\n" +
	"RUN pip install flask\n" +
	"EXPOSE 5000\n" +
	"ENV ENV_VAR_1=prod\n" +
	"CMD [\"python app.py\"]\n"

func TestGenerate_FlagsOnly(t *testing.T) {
	inTempProject(t)

	output, err := executeCmd(t, "generate",
		"--base-image", "python:3.9-slim",
		"--dependency", "flask",
		"--command", "python app.py",
		"--env", "ENV_VAR_1=prod",
		"--step", "Set WORKDIR",
		"--step", "Install Dependencies",
		"--step", "Expose Port",
		"--step", "Set Environment Variables",
		"--step", "Run Command",
	)

	require.NoError(t, err)
	assert.Equal(t, flaskDockerfile, output)
}

func TestGenerate_DefaultsToAllSteps(t *testing.T) {
	inTempProject(t)

	output, err := executeCmd(t, "generate", "-b", "alpine", "-c", "./run")

	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n\n"+
		"WORKDIR /app\n"+
		"COPY . /app\n"+
		"EXPOSE 5000\n"+
		"CMD [\"./run\"]\n", output)
}

func TestGenerate_RepeatedFlagsKeepOrder(t *testing.T) {
	inTempProject(t)

	output, err := executeCmd(t, "generate", "-b", "alpine",
		"-d", "b", "-d", "a",
		"-e", "Z=1", "-e", "A=2", "-e", "Z=3",
		"--step", "InstallDependencies", "--step", "SetEnvVars", "--step", "InstallDependencies",
	)

	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n\n"+
		"RUN pip install b\n"+
		"RUN pip install a\n"+
		"ENV Z=3\n"+
		"ENV A=2\n"+
		"RUN pip install b\n"+
		"RUN pip install a\n", output)
}

func TestGenerate_UnknownStepWarns(t *testing.T) {
	inTempProject(t)

	res, err := executeCmdFull(t, "generate", "-b", "alpine", "--step", "Add Healthcheck", "--step", "SetWorkdir")

	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n\nWORKDIR /app\n", res.Stdout)
	assert.Contains(t, res.Status, "Step 1 is not a known step")
}

func TestGenerate_DiscoveredRecipe(t *testing.T) {
	dir := inTempProject(t)
	writeProjectFile(t, dir, config.RecipeFileName, `base_image: node:20
dependencies: [express]
port: 3000
command: node server.js
env:
  NODE_ENV: production
steps: [SetWorkdir, CopyFiles, ExposePort, SetEnvVars, RunCommand]
`)

	subDir := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	require.NoError(t, os.Chdir(subDir))

	t.Run("recipe values", func(t *testing.T) {
		output, err := executeCmd(t, "generate")
		require.NoError(t, err)
		assert.Equal(t, "FROM node:20\n\n"+
			"WORKDIR /app\n"+
			"COPY . /app\n"+
			"EXPOSE 3000\n"+
			"ENV NODE_ENV=production\n"+
			"CMD [\"node server.js\"]\n", output)
	})

	t.Run("explicit flags override", func(t *testing.T) {
		output, err := executeCmd(t, "generate", "-b", "node:22", "-p", "8080", "-e", "NODE_ENV=dev", "-e", "EXTRA=1")
		require.NoError(t, err)
		assert.Equal(t, "FROM node:22\n\n"+
			"WORKDIR /app\n"+
			"COPY . /app\n"+
			"EXPOSE 8080\n"+
			"ENV NODE_ENV=dev\n"+
			"ENV EXTRA=1\n"+
			"CMD [\"node server.js\"]\n", output)
	})

	t.Run("explicit steps override", func(t *testing.T) {
		output, err := executeCmd(t, "generate", "--step", "RunCommand")
		require.NoError(t, err)
		assert.Equal(t, "FROM node:20\n\nCMD [\"node server.js\"]\n", output)
	})
}

func TestGenerate_RecipeFileWithVars(t *testing.T) {
	dir := inTempProject(t)
	recipe := writeProjectFile(t, dir, "recipes/api.yaml", `base_image: python:{{ .python }}-slim
command: {{ env "SHIPWRIGHT_TEST_CMD" | default "python app.py" | quote }}
steps: [RunCommand]
`)

	t.Run("vars rendered", func(t *testing.T) {
		output, err := executeCmd(t, "generate", "-f", recipe, "--var", "python=3.11")
		require.NoError(t, err)
		assert.Equal(t, "FROM python:3.11-slim\n\nCMD [\"python app.py\"]\n", output)
	})

	t.Run("missing var", func(t *testing.T) {
		_, err := executeCmd(t, "generate", "-f", recipe)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render template")
	})

	t.Run("malformed var", func(t *testing.T) {
		_, err := executeCmd(t, "generate", "-f", recipe, "--var", "python")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected key=value")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := executeCmd(t, "generate", "-f", filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestGenerate_Output(t *testing.T) {
	dir := inTempProject(t)

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "out", "Dockerfile.prod")
		res, err := executeCmdFull(t, "generate", "-b", "alpine", "--step", "SetWorkdir", "-o", path)
		require.NoError(t, err)
		assert.Empty(t, res.Stdout)
		assert.Contains(t, res.Status, "Wrote "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "FROM alpine\n\nWORKDIR /app\n", string(data))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := executeCmd(t, "generate", "-b", "alpine", "--step", "CopyFiles", "-o", dir)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
		require.NoError(t, err)
		assert.Equal(t, "FROM alpine\n\nCOPY . /app\n", string(data))
	})
}

func TestGenerate_InvalidInput(t *testing.T) {
	inTempProject(t)

	tests := []struct {
		name string
		args []string
	}{
		{"env without value", []string{"generate", "-e", "NOVALUE"}},
		{"env without name", []string{"generate", "-e", "=x"}},
		{"positional argument", []string{"generate", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCmd(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
