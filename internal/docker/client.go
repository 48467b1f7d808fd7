package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/client"
)

// ErrNoContext indicates a build was requested without a context directory.
var ErrNoContext = errors.New("build context directory is required")

// Client wraps the Docker SDK client.
type Client struct {
	api DockerAPI
}

// NewClient creates a new Docker client connection.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	return &Client{api: cli}, nil
}

// NewClientWithAPI creates a new Docker client with a custom API implementation.
// This is primarily used for testing with mock implementations.
func NewClientWithAPI(api DockerAPI) *Client {
	return &Client{api: api}
}

// Ping tests the connection to the Docker daemon.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.api.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping docker: %w", err)
	}

	return nil
}

// Close closes the Docker client connection.
func (c *Client) Close() error {
	if c.api != nil {
		return c.api.Close()
	}
	return nil
}

// BuildOptions configures an image build.
type BuildOptions struct {
	// ContextDir is the directory sent as the build context.
	ContextDir string

	// Dockerfile is the rendered manifest. It replaces any Dockerfile at
	// the root of ContextDir.
	Dockerfile string

	// Tags name the resulting image.
	Tags []string

	// NoCache disables the build cache.
	NoCache bool

	// Pull always attempts to pull a newer base image.
	Pull bool
}

// BuildImage builds an image and writes progress to out. It returns the
// image ID reported by the daemon, or an empty string if none was reported.
func (c *Client) BuildImage(ctx context.Context, opts BuildOptions, out io.Writer) (string, error) {
	if opts.ContextDir == "" {
		return "", ErrNoContext
	}

	tags, err := normalizeTags(opts.Tags)
	if err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeContext(pw, opts.ContextDir, []byte(opts.Dockerfile)))
	}()
	defer pr.Close()

	resp, err := c.api.ImageBuild(ctx, pr, build.ImageBuildOptions{
		Tags:        tags,
		Dockerfile:  dockerfileName,
		NoCache:     opts.NoCache,
		PullParent:  opts.Pull,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return "", fmt.Errorf("build image: %w", err)
	}
	defer resp.Body.Close()

	id, err := streamProgress(resp.Body, out)
	if err != nil {
		return "", fmt.Errorf("build image: %w", err)
	}
	return id, nil
}

// normalizeTags expands short tags to their canonical form, rejecting
// anything the daemon would refuse.
func normalizeTags(tags []string) ([]string, error) {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		named, err := reference.ParseNormalizedNamed(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid tag %q: %w", tag, err)
		}
		if _, isDigested := named.(reference.Digested); isDigested {
			return nil, fmt.Errorf("invalid tag %q: digests cannot be used as tags", tag)
		}
		result = append(result, reference.TagNameOnly(named).String())
	}
	return result, nil
}
