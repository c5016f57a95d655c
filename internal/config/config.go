// Package config loads formatting configuration from its layered sources:
// built-in defaults, a global per-user file, a project file found by upward
// directory search (or an explicit file), and per-invocation overrides.
//
// Files are JSONC (JSON with comments and trailing commas). They hold any
// subset of the eleven [render.Partial] fields plus an optional "schema"
// path:
//
//	{
//	  // house style
//	  "indent": 4,
//	  "sort_keys": true,
//	  "schema": "schemas/post.json",
//	}
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/DandyLyons/frontrange/internal/fs"
	"github.com/DandyLyons/frontrange/pkg/render"
)

// FileName is the project config file name searched for upward from the
// working directory.
const FileName = ".frontrange.json"

// File is the decoded content of one config file.
type File struct {
	render.Partial

	// Schema is a schema path, relative to the file that declares it.
	Schema *string `json:"schema,omitempty"`
}

// Sources records which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Config is the resolved configuration for one invocation.
type Config struct {
	Profile render.Profile
	Sources Sources

	// Schema is the absolute schema path from the highest config layer that
	// names one, or empty.
	Schema string
}

// Input describes where [Load] looks.
type Input struct {
	FS fs.FS

	// WorkDir is where the project search starts and what a relative
	// ConfigPath is resolved against.
	WorkDir string

	// ConfigPath is an explicit config file. It replaces the project search
	// and must exist.
	ConfigPath string

	// Env is the process environment in os.Environ form.
	Env []string

	// Overrides is the highest-precedence layer, usually built from flags.
	Overrides render.Partial
}

// GlobalConfigPath returns the global config file location:
// $XDG_CONFIG_HOME/frontrange/config.json if set, otherwise
// $HOME/.config/frontrange/config.json. Returns "" when neither is set.
func GlobalConfigPath(env []string) string {
	if xdg := lookupEnv(env, "XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "frontrange", "config.json")
	}

	if home := lookupEnv(env, "HOME"); home != "" {
		return filepath.Join(home, ".config", "frontrange", "config.json")
	}

	return ""
}

// FindProjectConfig looks for [FileName] in dir, then each parent in turn.
// It returns the found path, or ("", false, nil) after checking the root.
func FindProjectConfig(fsys fs.FS, dir string) (string, bool, error) {
	dir = filepath.Clean(dir)

	for {
		candidate := filepath.Join(dir, FileName)

		found, err := fs.IsFile(fsys, candidate)
		if err != nil {
			return "", false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, candidate, err)
		}

		if found {
			return candidate, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}

		dir = parent
	}
}

// Load resolves the configuration with this precedence (highest wins):
//  1. Defaults
//  2. Global user config
//  3. Project config found from WorkDir, or the explicit ConfigPath
//  4. Overrides
//
// A malformed file aborts with [ErrConfigInvalid].
func Load(in Input) (Config, error) {
	var (
		cfg     Config
		layers  []render.Partial
		schemas []string
	)

	global, globalPath, err := loadGlobal(in.FS, in.Env)
	if err != nil {
		return Config{}, err
	}

	if globalPath != "" {
		cfg.Sources.Global = globalPath
		layers = append(layers, global.Partial)
		schemas = append(schemas, schemaPath(global, globalPath))
	}

	project, projectPath, err := loadProject(in.FS, in.WorkDir, in.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	if projectPath != "" {
		cfg.Sources.Project = projectPath
		layers = append(layers, project.Partial)
		schemas = append(schemas, schemaPath(project, projectPath))
	}

	if err := in.Overrides.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: overrides: %w", ErrConfigInvalid, err)
	}

	layers = append(layers, in.Overrides)

	cfg.Profile = render.Resolve(layers...)

	for _, s := range schemas {
		if s != "" {
			cfg.Schema = s
		}
	}

	return cfg, nil
}

// Parse decodes one JSONC config file. Unknown fields, bad enum values and
// out-of-range numbers are errors.
func Parse(data []byte) (File, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return File{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var f File

	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := f.Partial.Validate(); err != nil {
		return File{}, err
	}

	if f.Schema != nil && strings.TrimSpace(*f.Schema) == "" {
		return File{}, ErrSchemaEmpty
	}

	return f, nil
}

// Format returns the resolved profile as indented JSON in config-file form,
// so the output can be pasted into a config file.
func Format(cfg Config) (string, error) {
	out := File{Partial: cfg.Profile.Partial()}

	if cfg.Schema != "" {
		out.Schema = &cfg.Schema
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}

func loadGlobal(fsys fs.FS, env []string) (File, string, error) {
	path := GlobalConfigPath(env)
	if path == "" {
		return File{}, "", nil
	}

	f, loaded, err := loadFile(fsys, path, false)
	if err != nil || !loaded {
		return File{}, "", err
	}

	return f, path, nil
}

func loadProject(fsys fs.FS, workDir, configPath string) (File, string, error) {
	var path string

	if configPath != "" {
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		exists, err := fsys.Exists(path)
		if err != nil {
			return File{}, "", fmt.Errorf("%w: %s: %w", ErrConfigFileRead, configPath, err)
		}

		if !exists {
			return File{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		found, ok, err := FindProjectConfig(fsys, workDir)
		if err != nil || !ok {
			return File{}, "", err
		}

		path = found
	}

	f, loaded, err := loadFile(fsys, path, true)
	if err != nil || !loaded {
		return File{}, "", err
	}

	return f, path, nil
}

// loadFile reads and parses path. When mustExist is false a missing file
// is reported as not loaded.
func loadFile(fsys fs.FS, path string, mustExist bool) (File, bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if !mustExist && errors.Is(err, iofs.ErrNotExist) {
			return File{}, false, nil
		}

		return File{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return File{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return f, true, nil
}

func schemaPath(f File, declaredIn string) string {
	if f.Schema == nil {
		return ""
	}

	if filepath.IsAbs(*f.Schema) {
		return filepath.Clean(*f.Schema)
	}

	return filepath.Join(filepath.Dir(declaredIn), *f.Schema)
}

func lookupEnv(env []string, key string) string {
	// Later entries win, as with os/exec.
	value := ""

	for _, e := range env {
		if after, ok := strings.CutPrefix(e, key+"="); ok {
			value = after
		}
	}

	return value
}
