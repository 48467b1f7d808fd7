package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/session"
)

func TestSession_Workflow(t *testing.T) {
	dir := inTempProject(t)

	steps := []struct {
		args []string
	}{
		{[]string{"session", "set", "--base-image", "python:3.9-slim", "--command", "python app.py"}},
		{[]string{"session", "add-dep", "flask"}},
		{[]string{"session", "add-dep", "requests"}},
		{[]string{"session", "rm-dep"}},
		{[]string{"session", "add-env", "prod"}},
		{[]string{"session", "steps", "Set WORKDIR", "Install Dependencies", "Expose Port", "Set Environment Variables", "Run Command"}},
	}
	for _, s := range steps {
		_, err := executeCmd(t, s.args...)
		require.NoError(t, err, "%v", s.args)
	}

	output, err := executeCmd(t, "session", "render")
	require.NoError(t, err)
	assert.Equal(t, flaskDockerfile, output)

	_, err = os.Stat(filepath.Join(dir, ".shipwright", "session.yaml"))
	assert.NoError(t, err, "state lives in the project state dir")
}

func TestSession_NewSessionDefaults(t *testing.T) {
	inTempProject(t)

	output, err := executeCmd(t, "session", "render")
	require.NoError(t, err)
	assert.Equal(t, "FROM \n\n"+
		"WORKDIR /app\n"+
		"COPY . /app\n"+
		"EXPOSE 5000\n"+
		"CMD [\"\"]\n", output)
}

func TestSession_EnvVars(t *testing.T) {
	inTempProject(t)

	for _, args := range [][]string{
		{"session", "add-env", "one"},
		{"session", "add-env", "--name", "DEBUG", "0"},
		{"session", "add-env"},
		{"session", "rm-env"},
		{"session", "set-env", "ENV_VAR_1=uno"},
		{"session", "steps", "SetEnvVars"},
		{"session", "set", "-b", "alpine"},
	} {
		_, err := executeCmd(t, args...)
		require.NoError(t, err, "%v", args)
	}

	output, err := executeCmd(t, "session", "render")
	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n\nENV ENV_VAR_1=uno\nENV DEBUG=0\n", output)
}

func TestSession_RemoveFromEmpty(t *testing.T) {
	inTempProject(t)

	res, err := executeCmdFull(t, "session", "rm-dep")
	require.NoError(t, err)
	assert.Contains(t, res.Status, "No dependencies to remove")

	res, err = executeCmdFull(t, "session", "rm-env")
	require.NoError(t, err)
	assert.Contains(t, res.Status, "No environment variables to remove")
}

func TestSession_Show(t *testing.T) {
	inTempProject(t)

	_, err := executeCmd(t, "session", "add-env", "--name", "Z", "1")
	require.NoError(t, err)
	_, err = executeCmd(t, "session", "add-env", "--name", "A", "2")
	require.NoError(t, err)

	output, err := executeCmd(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "port: \"5000\"")
	assert.Contains(t, output, "env:\n    Z: \"1\"\n    A: \"2\"\n")
	assert.Contains(t, output, "- SetWorkdir")
}

func TestSession_Steps(t *testing.T) {
	inTempProject(t)

	t.Run("requires steps", func(t *testing.T) {
		_, err := executeCmd(t, "session", "steps")
		assert.Error(t, err)
	})

	t.Run("unknown steps kept and warned", func(t *testing.T) {
		res, err := executeCmdFull(t, "session", "steps", "bogus", "RunCommand")
		require.NoError(t, err)
		assert.Contains(t, res.Status, "Step 1 is not a known step")

		output, err := executeCmd(t, "session", "show")
		require.NoError(t, err)
		assert.Contains(t, output, "- Unknown\n")
	})

	t.Run("restore defaults", func(t *testing.T) {
		_, err := executeCmd(t, "session", "steps", "--default")
		require.NoError(t, err)

		output, err := executeCmd(t, "session", "render")
		require.NoError(t, err)
		assert.Contains(t, output, "COPY . /app\n")
	})
}

func TestSession_SetRequiresAFlag(t *testing.T) {
	inTempProject(t)

	_, err := executeCmd(t, "session", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to set")
}

func TestSession_SetEnvRejectsMalformed(t *testing.T) {
	inTempProject(t)

	_, err := executeCmd(t, "session", "set-env", "NOVALUE")
	assert.Error(t, err)
}

func TestSession_Reset(t *testing.T) {
	inTempProject(t)

	_, err := executeCmd(t, "session", "add-dep", "flask")
	require.NoError(t, err)

	_, err = executeCmd(t, "session", "reset")
	require.NoError(t, err)

	output, err := executeCmd(t, "session", "render")
	require.NoError(t, err)
	assert.NotContains(t, output, "pip install")
}

func TestSession_StateDirOverride(t *testing.T) {
	inTempProject(t)
	stateDir := filepath.Join(t.TempDir(), "state")
	t.Setenv(config.EnvStateDir, stateDir)

	_, err := executeCmd(t, "session", "add-dep", "flask")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(stateDir, "session.yaml"))
	assert.NoError(t, err)
}

func TestSession_RenderToFile(t *testing.T) {
	dir := inTempProject(t)

	_, err := executeCmd(t, "session", "set", "-b", "alpine")
	require.NoError(t, err)
	_, err = executeCmd(t, "session", "render", "-o", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "FROM alpine\n\n")
}

func TestSession_SetDep(t *testing.T) {
	inTempProject(t)

	for _, args := range [][]string{
		{"session", "add-dep", "flask"},
		{"session", "add-dep", "redis"},
		{"session", "set-dep", "1", "flask==3.0.0"},
		{"session", "steps", "InstallDependencies"},
		{"session", "set", "-b", "python:3.12"},
	} {
		_, err := executeCmd(t, args...)
		require.NoError(t, err, "%v", args)
	}

	output, err := executeCmd(t, "session", "render")
	require.NoError(t, err)
	assert.Equal(t, "FROM python:3.12\n\nRUN pip install flask==3.0.0\nRUN pip install redis\n", output)

	t.Run("position out of range", func(t *testing.T) {
		_, err := executeCmd(t, "session", "set-dep", "3", "x")
		assert.ErrorIs(t, err, session.ErrNoDependency)
	})

	t.Run("position not a number", func(t *testing.T) {
		_, err := executeCmd(t, "session", "set-dep", "first", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid position")
	})
}

func TestSession_RmEnvByName(t *testing.T) {
	inTempProject(t)

	for _, args := range [][]string{
		{"session", "add-env", "one"},
		{"session", "add-env", "--name", "DEBUG", "0"},
		{"session", "add-env", "three"},
		{"session", "rm-env", "--name", "DEBUG"},
		{"session", "steps", "SetEnvVars"},
		{"session", "set", "-b", "alpine"},
	} {
		_, err := executeCmd(t, args...)
		require.NoError(t, err, "%v", args)
	}

	output, err := executeCmd(t, "session", "render")
	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n\nENV ENV_VAR_1=one\nENV ENV_VAR_3=three\n", output)

	_, err = executeCmd(t, "session", "rm-env", "--name", "MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "have ENV_VAR_1, ENV_VAR_3")
}
