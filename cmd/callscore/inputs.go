package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/repcoach/callscore/internal/cache"
	"github.com/repcoach/callscore/internal/graders"
	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/projectconfig"
	"github.com/repcoach/callscore/internal/scoring"
	"github.com/repcoach/callscore/internal/validation"
)

// loadProjectConfig reads .callscore.yaml from the working directory or one
// of its parents.
func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

func newEngine(cfg *projectconfig.ProjectConfig) *scoring.Engine {
	penalties := cfg.Penalties()
	return scoring.NewEngine(&penalties)
}

// cacheSalt changes whenever a setting that affects scores changes, so cached
// results are never reused across configurations.
func cacheSalt(p graders.Penalties) string {
	return fmt.Sprintf("callscore/%s|%g|%g|%g|%g", version, p.Cap, p.PerFillerPerMinute, p.PerInterruption, p.PaceDivisor)
}

func openCache(dir string) (*cache.Cache, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache directory: %w", err)
	}
	return cache.New(absDir), nil
}

// checkSchema validates the file at path against the schema of kind.
func checkSchema(path string, kind validation.DocumentKind) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return validation.ProblemsError(kind, path, validation.ValidateBytes(kind, data))
}

// attemptOverrides are scenario inputs given on the command line. They apply
// to every attempt loaded with them.
type attemptOverrides struct {
	rubric          *models.Rubric
	persona         *models.Persona
	callDurationSec float64
}

func loadOverrides(rubricPath, personaPath string, callDurationSec float64) (attemptOverrides, error) {
	o := attemptOverrides{callDurationSec: callDurationSec}

	if rubricPath != "" {
		if err := checkSchema(rubricPath, validation.KindRubric); err != nil {
			return o, err
		}
		r, err := models.LoadRubric(rubricPath)
		if err != nil {
			return o, err
		}
		o.rubric = r
	}

	if personaPath != "" {
		if err := checkSchema(personaPath, validation.KindPersona); err != nil {
			return o, err
		}
		p, err := models.LoadPersona(personaPath)
		if err != nil {
			return o, fmt.Errorf("loading persona: %w", err)
		}
		o.persona = p
	}

	return o, nil
}

// loadAttempt validates and loads an attempt file and applies overrides.
func loadAttempt(path string, o attemptOverrides) (*models.Attempt, error) {
	if err := checkSchema(path, validation.KindAttempt); err != nil {
		return nil, err
	}
	a, err := models.LoadAttempt(path)
	if err != nil {
		return nil, err
	}

	if o.rubric != nil {
		a.Rubric = o.rubric
	}
	if o.persona != nil {
		a.Persona = o.persona
	}
	if o.callDurationSec > 0 {
		a.CallDurationSec = o.callDurationSec
	}
	return a, nil
}

var attemptExtensions = []string{".yaml", ".yml", ".json"}

// expandAttemptPaths resolves directories (their attempt files, not
// recursive) and glob patterns into a sorted, de-duplicated list of files.
func expandAttemptPaths(args []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if !e.IsDir() && slices.Contains(attemptExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
					add(filepath.Join(arg, e.Name()))
				}
			}
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no attempt files match %q", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}

	slices.Sort(files)
	return files, nil
}

func attemptIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
