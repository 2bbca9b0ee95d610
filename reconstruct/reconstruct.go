// Package reconstruct runs the service-locator rewrite over a source tree.
//
// A run boots the container once, hands files to a pool of workers that each own their parsers and
// rule instances, and reports what changed per file.  Only the top-level statements a rule changed are
// re-printed; everything else is copied from the source byte for byte.
package reconstruct

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/container"
	"github.com/arjunmahishi/reconstruct/dispatcher"
	"github.com/arjunmahishi/reconstruct/kernel"
	"github.com/arjunmahishi/reconstruct/lang"
	"github.com/arjunmahishi/reconstruct/naming"
	"github.com/arjunmahishi/reconstruct/output"
	"github.com/arjunmahishi/reconstruct/parser"
	"github.com/arjunmahishi/reconstruct/printer"
	"github.com/arjunmahishi/reconstruct/reconstructor"
	"github.com/arjunmahishi/reconstruct/scanner"
	"github.com/arjunmahishi/reconstruct/types"
	"github.com/arjunmahishi/reconstruct/util/logging"
)

// settings are Options merged with the run configuration file.
type settings struct {
	opts      Options
	languages []lang.Language
	kernel    kernel.Config
	lookup    string
	names     *naming.Resolver
}

// resolve applies defaults and the configuration file.  Explicit options win over the file.
func resolve(opts Options) (*settings, error) {
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = 2 * 1024 * 1024
	}

	var languages []lang.Language
	if opts.Language != "" {
		language := lang.Get(opts.Language)
		if language == nil {
			return nil, errors.New(opts.Language + " language not registered")
		}
		languages = append(languages, language)
	} else {
		for _, name := range lang.List() {
			languages = append(languages, lang.Get(name))
		}
	}

	cfg, err := loadRunConfig(opts)
	if err != nil {
		return nil, err
	}

	kcfg := kernel.DefaultConfig()
	lookup := reconstructor.DefaultLookupName
	var ncfg naming.Config
	if cfg != nil {
		kcfg.Manifest = cfg.path(cfg.Container.Manifest)
		kcfg.CacheDir = cfg.path(cfg.Container.CacheDir)
		if cfg.Container.Environment != "" {
			kcfg.Environment = cfg.Container.Environment
		}
		if cfg.Container.Debug != nil {
			kcfg.Debug = *cfg.Container.Debug
		}
		if cfg.Locator.Method != "" {
			lookup = cfg.Locator.Method
		}
		ncfg.StripSuffixes = cfg.Naming.StripSuffixes
	}

	if opts.Manifest != "" {
		kcfg.Manifest = opts.Manifest
	}
	if opts.CacheDir != "" {
		kcfg.CacheDir = opts.CacheDir
	}
	if opts.Environment != "" {
		kcfg.Environment = opts.Environment
	}
	if opts.Debug != nil {
		kcfg.Debug = *opts.Debug
	}
	if opts.LookupName != "" {
		lookup = opts.LookupName
	}
	if opts.StripSuffixes != nil {
		ncfg.StripSuffixes = opts.StripSuffixes
	}

	return &settings{
		opts:      opts,
		languages: languages,
		kernel:    kcfg,
		lookup:    lookup,
		names:     naming.New(ncfg),
	}, nil
}

func loadRunConfig(opts Options) (*RunConfig, error) {
	if opts.Config != "" {
		return LoadConfig(opts.Config)
	}
	start := opts.Path
	if opts.File != "" {
		start = filepath.Dir(opts.File)
	}
	return FindConfig(start)
}

func (s *settings) collect() ([]types.FileJob, error) {
	if s.opts.File != "" {
		sc := scanner.New(scanner.Config{Languages: s.languages})
		job, err := sc.CollectSingle(s.opts.File)
		if err != nil {
			return nil, err
		}
		return []types.FileJob{job}, nil
	}
	sc := scanner.New(scanner.Config{
		Root:      s.opts.Path,
		Languages: s.languages,
		MaxBytes:  s.opts.MaxBytes,
	})
	return sc.Collect()
}

// boot starts the container described by the settings.  The caller shuts the kernel down.
func (s *settings) boot() (*kernel.Kernel, error) {
	k, err := kernel.Boot(s.kernel)
	if err != nil {
		return nil, errors.Wrap(err, "booting container")
	}
	return k, nil
}

// Process rewrites every file under opts.Path (or opts.File) and reports the files that contain service
// lookups.  The container is booted before any file is read; if that fails, nothing is touched.  Errors
// of individual files are returned together, next to the results of the files that succeeded.
func Process(ctx context.Context, opts Options) ([]types.FileResult, error) {
	s, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	k, err := s.boot()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := k.Shutdown(); err != nil {
			glog.Warningf("container shutdown: %v", err)
		}
	}()

	files, err := s.collect()
	if err != nil {
		return nil, err
	}
	logging.V(3).Infof("processing %d files, environment %s, %d services",
		len(files), k.Environment(), len(k.Keys()))

	bridge := container.NewBridge(k.Container())
	return runWorkers(ctx, files, s.opts.Jobs,
		func(ctx context.Context, ps parsers, job types.FileJob) (types.FileResult, bool, error) {
			return s.processFile(ctx, ps, bridge, job)
		})
}

func (s *settings) processFile(
	ctx context.Context, ps parsers, bridge reconstructor.Bridge, job types.FileJob,
) (types.FileResult, bool, error) {
	p, err := ps.get(job.Language)
	if err != nil {
		return types.FileResult{}, false, err
	}
	source, err := os.ReadFile(job.AbsPath)
	if err != nil {
		return types.FileResult{}, false, errors.Wrap(err, "read file")
	}
	file, err := p.Parse(ctx, source)
	if err != nil {
		return types.FileResult{}, false, err
	}

	before := ast.Clone(file.Program).(*ast.Program)
	rule := reconstructor.NewNamedServices(bridge,
		reconstructor.WithLookupName(s.lookup),
		reconstructor.WithResolver(s.names))
	report, err := dispatcher.New(rule).Run(file.Program)
	if err != nil {
		return types.FileResult{}, false, err
	}

	stats := rule.Stats()
	logging.V(3).Infof("%s: %d nodes, %d sites, %d rewritten", job.DisplayPath, report.Visited, stats.Sites, stats.Migrated)
	if stats.Sites == 0 {
		return types.FileResult{}, false, nil
	}

	for _, typ := range unimportedTypes(file.Program, rule.Migrations()) {
		logging.V(5).Infof("%s: %s is injected but not imported", job.DisplayPath, typ)
	}

	rewritten := splice(file, before)
	result := types.FileResult{
		File:       job.DisplayPath,
		Changed:    !bytes.Equal(rewritten, file.Source),
		Sites:      stats.Sites,
		Skipped:    stats.Skipped,
		Migrations: rule.Migrations(),
	}
	if s.opts.Diff {
		diff, err := output.Diff(job.DisplayPath, file.Source, rewritten)
		if err != nil {
			return types.FileResult{}, false, err
		}
		result.Diff = diff
	}
	if result.Changed && !s.opts.DryRun {
		if err := writeFile(job.AbsPath, rewritten); err != nil {
			return types.FileResult{}, false, err
		}
		result.Written = true
	}
	return result, true, nil
}

// splice renders prog, copying the statements equal to their counterpart in before from the source.
func splice(file *parser.File, before *ast.Program) []byte {
	prog := file.Program
	if len(prog.Stmts) != len(before.Stmts) || len(file.Spans) != len(prog.Stmts) {
		return printer.Print(prog)
	}

	var buf bytes.Buffer
	pos := 0
	for i, stmt := range prog.Stmts {
		span := file.Spans[i]
		buf.Write(file.Source[pos:span.Start])
		if ast.Equal(before.Stmts[i], stmt) {
			buf.Write(file.Source[span.Start:span.End])
		} else {
			buf.WriteString(strings.TrimSuffix(printer.String(stmt), "\n"))
		}
		pos = span.End
	}
	buf.Write(file.Source[pos:])
	return buf.Bytes()
}

// writeFile replaces the contents of path, keeping its permissions.
func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat file")
	}
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return errors.Wrap(err, "write file")
	}
	return nil
}

// Locate lists the service lookups in the source tree without resolving them.  Sites come back in file
// order, and in source order within a file.
func Locate(ctx context.Context, opts Options) ([]types.LocatorSite, error) {
	s, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	queries := make(map[string]*parser.Query, len(s.languages))
	for _, language := range s.languages {
		q, err := parser.NewQuery(language.LocatorQuery(), language)
		if err != nil {
			return nil, errors.Wrap(err, language.Name())
		}
		queries[language.Name()] = q
	}

	files, err := s.collect()
	if err != nil {
		return nil, err
	}

	perFile, err := runWorkers(ctx, files, s.opts.Jobs,
		func(ctx context.Context, ps parsers, job types.FileJob) ([]types.LocatorSite, bool, error) {
			p, err := ps.get(job.Language)
			if err != nil {
				return nil, false, err
			}
			source, err := os.ReadFile(job.AbsPath)
			if err != nil {
				return nil, false, errors.Wrap(err, "read file")
			}
			tree, err := p.ParseTree(ctx, source)
			if err != nil {
				return nil, false, err
			}
			defer tree.Close()

			sites := locateSites(queries[job.Language], tree, source, job.DisplayPath, s.lookup)
			return sites, len(sites) > 0, nil
		})

	sites := []types.LocatorSite{}
	for _, fileSites := range perFile {
		sites = append(sites, fileSites...)
	}
	return sites, err
}

// Services boots the container and lists its services with the type each resolves to and the member
// name an injection would use.  Services that fail to build are listed with their error.
func Services(opts Options) ([]types.ServiceInfo, error) {
	s, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	k, err := s.boot()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := k.Shutdown(); err != nil {
			glog.Warningf("container shutdown: %v", err)
		}
	}()

	bridge := container.NewBridge(k.Container())
	infos := []types.ServiceInfo{}
	for _, key := range k.Keys() {
		info := types.ServiceInfo{Key: key}
		typ, err := bridge.ResolveType(key)
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Type = string(typ)
			info.Property = s.names.BaseName(string(typ))
		}
		infos = append(infos, info)
	}
	return infos, nil
}
