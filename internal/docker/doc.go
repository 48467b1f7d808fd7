// Package docker builds images from rendered manifests through the Docker
// Engine API.
//
// The Client packs a build context directory together with a rendered
// Dockerfile into a tar stream, sends it to the daemon and relays build
// progress to a writer.
//
// # Interface Abstraction
//
// The DockerAPI interface abstracts the Docker SDK, enabling mock injection
// for testing. Use NewClientWithAPI for test scenarios.
//
// # Example
//
//	client, err := docker.NewClient()
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	id, err := client.BuildImage(ctx, docker.BuildOptions{
//	    ContextDir: ".",
//	    Dockerfile: manifest.Render(recipe),
//	    Tags:       []string{"myapp:latest"},
//	}, os.Stderr)
package docker
