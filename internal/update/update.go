// Package update provides self-update functionality for shipwright.
package update

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
)

const (
	// Repository owner and name for GitHub releases.
	repoOwner = "cameronsjo"
	repoName  = "shipwright"
)

// ErrNoReleases indicates the release source has nothing for this platform.
var ErrNoReleases = errors.New("no releases found")

// Release contains information about an available update.
type Release struct {
	Version     string
	ReleaseURL  string
	PublishedAt string
	Changelog   string
}

// ChangelogPreview returns at most maxLines lines of the changelog and the
// number of lines left out.
func (r *Release) ChangelogPreview(maxLines int) ([]string, int) {
	if strings.TrimSpace(r.Changelog) == "" {
		return nil, 0
	}
	lines := strings.Split(strings.TrimRight(r.Changelog, "\n"), "\n")
	if len(lines) <= maxLines {
		return lines, 0
	}
	return lines[:maxLines], len(lines) - maxLines
}

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create update source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}
	return updater, nil
}

// latestNewer returns the latest release when it is newer than
// currentVersion, or nil when currentVersion is up to date.
func latestNewer(ctx context.Context, updater *selfupdate.Updater, currentVersion string) (*selfupdate.Release, error) {
	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w for %s/%s on %s", ErrNoReleases, repoOwner, repoName, Platform())
	}
	if latest.LessOrEqual(currentVersion) {
		return nil, nil
	}
	return latest, nil
}

func toRelease(latest *selfupdate.Release) *Release {
	return &Release{
		Version:     latest.Version(),
		ReleaseURL:  latest.URL,
		PublishedAt: latest.PublishedAt.Format("2006-01-02"),
		Changelog:   latest.ReleaseNotes,
	}
}

// CheckForUpdate reports whether a newer version is available.
func CheckForUpdate(ctx context.Context, currentVersion string) (*Release, bool, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, false, err
	}

	latest, err := latestNewer(ctx, updater, currentVersion)
	if err != nil || latest == nil {
		return nil, false, err
	}
	return toRelease(latest), true, nil
}

// Update downloads and installs the latest version. It returns nil when
// already up to date.
func Update(ctx context.Context, currentVersion string) (*Release, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, err
	}

	latest, err := latestNewer(ctx, updater, currentVersion)
	if err != nil || latest == nil {
		return nil, err
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, fmt.Errorf("get executable path: %w", err)
	}

	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return nil, fmt.Errorf("update binary: %w", err)
	}

	return toRelease(latest), nil
}

// Platform returns the current platform as os/arch.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
