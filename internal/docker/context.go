package docker

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
)

const (
	// dockerfileName is where the rendered manifest sits inside the context.
	dockerfileName = "Dockerfile"

	dockerignoreName = ".dockerignore"
)

// skipDirs are never sent to the daemon.
var skipDirs = map[string]bool{
	".git":        true,
	".shipwright": true,
}

// readIgnore loads the .dockerignore patterns at the root of dir. A missing
// file yields a nil matcher.
func readIgnore(dir string) (*patternmatcher.PatternMatcher, error) {
	f, err := os.Open(filepath.Join(dir, dockerignoreName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dockerignoreName, err)
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return patternmatcher.New(patterns)
}

// writeContext writes dir as a tar stream with dockerfile injected at the
// root. Paths matched by .dockerignore are left out. Symlinks are stored as
// links. A Dockerfile already at the root is replaced.
func writeContext(w io.Writer, dir string, dockerfile []byte) error {
	ignore, err := readIgnore(dir)
	if err != nil {
		return fmt.Errorf("pack build context: %w", err)
	}

	tw := tar.NewWriter(w)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if rel == dockerfileName {
			return nil
		}
		if ignore != nil {
			skip, err := ignore.MatchesOrParentMatches(rel)
			if err != nil {
				return err
			}
			if skip {
				// A later !pattern may re-include something below an
				// ignored directory, so only prune when there is none.
				if d.IsDir() && !ignore.Exclusions() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return addEntry(tw, path, filepath.ToSlash(rel), info)
	})
	if err != nil {
		return fmt.Errorf("pack build context: %w", err)
	}

	hdr := &tar.Header{
		Name:    dockerfileName,
		Mode:    0644,
		Size:    int64(len(dockerfile)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("pack manifest: %w", err)
	}
	if _, err := tw.Write(dockerfile); err != nil {
		return fmt.Errorf("pack manifest: %w", err)
	}

	return tw.Close()
}

func addEntry(tw *tar.Writer, path, name string, info fs.FileInfo) error {
	link := ""
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		link = target
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
