package manifest

import (
	"bufio"
	"io"
	"strings"
)

// Render turns a recipe into Dockerfile text.
//
// The FROM line and a blank separator always come first. Each entry in
// r.Steps then emits its instructions in order; repeated steps emit again
// and unknown steps emit nothing. Every line ends in a newline. Render
// never fails and never modifies r.
func Render(r Recipe) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = RenderTo(&b, r)
	return b.String()
}

// RenderTo writes the rendered manifest to w. The only errors are those
// returned by w.
func RenderTo(w io.Writer, r Recipe) error {
	bw := bufio.NewWriter(w)
	emit := func(parts ...string) {
		for _, p := range parts {
			bw.WriteString(p)
		}
		bw.WriteByte('\n')
	}

	emit("FROM ", r.BaseImage)
	emit()

	for _, step := range r.Steps {
		switch step {
		case StepSetWorkdir:
			emit("WORKDIR ", Workdir)
		case StepCopyFiles:
			emit("COPY . ", Workdir)
		case StepInstallDependencies:
			for _, dep := range r.Dependencies {
				emit("RUN pip install ", dep)
			}
		case StepExposePort:
			emit("EXPOSE ", string(r.Port))
		case StepSetEnvVars:
			for _, v := range r.Env {
				emit("ENV ", v.Name, "=", v.Value)
			}
		case StepRunCommand:
			emit(`CMD ["`, r.Command, `"]`)
		case StepUnknown:
			// Ignored.
		}
	}

	return bw.Flush()
}

// Generate renders r and wraps the result with the file name and media type
// a download needs.
func Generate(r Recipe) Artifact {
	return Artifact{
		Content:   Render(r),
		FileName:  FileName,
		MediaType: MediaType,
	}
}
