// Package scanner provides file discovery for reconstruct.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/lang"
	"github.com/arjunmahishi/reconstruct/types"
)

// DefaultIgnoreDirs returns the default list of directories to ignore.
func DefaultIgnoreDirs() map[string]struct{} {
	return map[string]struct{}{
		".git":         {},
		".hg":          {},
		".svn":         {},
		".jj":          {},
		"node_modules": {},
		"vendor":       {},
		"dist":         {},
		"build":        {},
		"out":          {},
		".next":        {},
		".nuxt":        {},
		".cache":       {},
		".turbo":       {},
		".reconstruct": {},
		"coverage":     {},
	}
}

// Config holds scanner configuration.
type Config struct {
	Root       string
	Languages  []lang.Language
	IgnoreDirs map[string]struct{}
	MaxBytes   int64
}

// Scanner discovers files for processing.
type Scanner struct {
	cfg Config
}

// New creates a new Scanner with the given configuration.
func New(cfg Config) *Scanner {
	if cfg.IgnoreDirs == nil {
		cfg.IgnoreDirs = DefaultIgnoreDirs()
	}
	return &Scanner{cfg: cfg}
}

// Collect finds all matching files and returns them as FileJobs, in lexical order.
func (s *Scanner) Collect() ([]types.FileJob, error) {
	absRoot, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve root")
	}

	var jobs []types.FileJob
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.shouldIgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		language := s.languageFor(d.Name())
		if language == nil || strings.HasSuffix(d.Name(), ".d.ts") {
			return nil
		}

		if s.cfg.MaxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				// Skip files we can't stat
				return nil
			}
			if info.Size() > s.cfg.MaxBytes {
				return nil
			}
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}

		jobs = append(jobs, types.FileJob{
			AbsPath:     path,
			DisplayPath: filepath.ToSlash(rel),
			Language:    language.Name(),
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// CollectSingle returns a single file as a FileJob.
func (s *Scanner) CollectSingle(filePath string) (types.FileJob, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return types.FileJob{}, errors.Wrap(err, "resolve path")
	}

	language := s.languageFor(absPath)
	if language == nil {
		return types.FileJob{}, errors.Errorf("%s: unsupported file type", filePath)
	}

	return types.FileJob{
		AbsPath:     absPath,
		DisplayPath: filepath.Base(absPath),
		Language:    language.Name(),
	}, nil
}

func (s *Scanner) shouldIgnoreDir(name string) bool {
	_, ok := s.cfg.IgnoreDirs[name]
	return ok
}

func (s *Scanner) languageFor(name string) lang.Language {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}
	for _, language := range s.cfg.Languages {
		for _, e := range language.Extensions() {
			if ext == e {
				return language
			}
		}
	}
	return nil
}
