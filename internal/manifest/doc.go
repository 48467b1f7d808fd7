// Package manifest renders Dockerfiles from a small set of build parameters.
//
// A Recipe carries a base image, dependencies, a port, a startup command,
// ordered environment variables and an ordered list of steps. Render turns
// it into Dockerfile text:
//
//	FROM python:3.9-slim
//
//	WORKDIR /app
//	RUN pip install flask
//	EXPOSE 5000
//	ENV ENV_VAR_1=prod
//	CMD ["python app.py"]
//
// # Steps
//
// Six steps exist: SetWorkdir, CopyFiles, InstallDependencies, ExposePort,
// SetEnvVars and RunCommand. The order of Recipe.Steps is the order of the
// output. Omitted steps emit nothing, repeated steps emit again, and step
// text that names none of the six is ignored.
//
// Rendering is pure. Inputs are never validated or modified; Lint reports
// likely problems separately for callers that want them.
//
// # Recipe Files
//
// Recipes can be stored as YAML. Files are rendered as Go templates with
// sprig functions before decoding. Values passed by the caller are the
// template root; referencing a missing one is an error.
//
//	base_image: python:{{ env "PYTHON_VERSION" | default "3.9" }}-slim
//	dependencies: [flask, gunicorn]
//	port: 5000
//	command: python app.py
//	env:
//	  APP_ENV: prod
//	steps: [Set WORKDIR, Copy Files, Install Dependencies, Run Command]
package manifest
