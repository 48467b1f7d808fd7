// Package config handles project discovery and configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

const (
	// RecipeFileName is the recipe file looked for during discovery.
	RecipeFileName = "shipwright.yaml"

	// StateDirName holds session state and locks, relative to the root.
	StateDirName = ".shipwright"

	// SessionFileName is the session state file inside the state directory.
	SessionFileName = "session.yaml"
)

// Environment variables that override discovery.
const (
	EnvRecipe   = "SHIPWRIGHT_RECIPE"
	EnvStateDir = "SHIPWRIGHT_STATE_DIR"
	EnvToken    = "SHIPWRIGHT_TOKEN"
)

// ErrRecipeNotFound indicates no recipe file was found between the start
// directory and the search boundary.
var ErrRecipeNotFound = errors.New("recipe file not found")

// Config holds the shipwright project configuration.
type Config struct {
	// Root is the project root: the recipe's directory, else the enclosing
	// git worktree, else the starting directory.
	Root string

	// RecipeFile is the discovered recipe path, or empty if there is none.
	RecipeFile string

	// StateDir holds session state and locks.
	StateDir string

	// Token is the bearer token the HTTP API requires, if any.
	Token string
}

// GitRoot returns the worktree root of the git repository containing dir.
func GitRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return wt.Filesystem.Root(), true
}

// FindRecipe searches upward from start for RecipeFileName. The search
// stops at the enclosing git worktree root when there is one, and at the
// filesystem root otherwise.
func FindRecipe(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	boundary, inRepo := GitRoot(dir)

	for {
		candidate := filepath.Join(dir, RecipeFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		if inRepo && dir == boundary {
			break
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: no %s above %s", ErrRecipeNotFound, RecipeFileName, start)
}

// Load discovers configuration from the current working directory.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return LoadFrom(wd)
}

// LoadFrom discovers configuration starting at dir. A missing recipe is not
// an error; RecipeFile is left empty.
func LoadFrom(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	cfg := &Config{Root: dir, Token: os.Getenv(EnvToken)}

	if recipe := os.Getenv(EnvRecipe); recipe != "" {
		if !filepath.IsAbs(recipe) {
			recipe = filepath.Join(dir, recipe)
		}
		cfg.RecipeFile = recipe
		cfg.Root = filepath.Dir(recipe)
	} else if recipe, err := FindRecipe(dir); err == nil {
		cfg.RecipeFile = recipe
		cfg.Root = filepath.Dir(recipe)
	} else if !errors.Is(err, ErrRecipeNotFound) {
		return nil, err
	} else if root, ok := GitRoot(dir); ok {
		cfg.Root = root
	}

	cfg.StateDir = os.Getenv(EnvStateDir)
	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Join(cfg.Root, StateDirName)
	}

	return cfg, nil
}

// HasRecipe reports whether a recipe file was found or configured.
func (c *Config) HasRecipe() bool {
	return c.RecipeFile != ""
}
