package reconstruct

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/lang"
	"github.com/arjunmahishi/reconstruct/parser"
	"github.com/arjunmahishi/reconstruct/types"
)

// parsers hands out one parser per language.  It belongs to a single worker.
type parsers map[string]*parser.Parser

func (ps parsers) get(name string) (*parser.Parser, error) {
	if p, ok := ps[name]; ok {
		return p, nil
	}
	language := lang.Get(name)
	if language == nil {
		return nil, errors.New(name + " language not registered")
	}
	p := parser.New(language)
	ps[name] = p
	return p, nil
}

// runWorkers processes files on a pool of jobs workers.  process returning ok=false drops the file from
// the results; results keep the order of files.  Errors of individual files are collected and returned
// together, and a cancelled ctx stops handing out files.
func runWorkers[R any](
	ctx context.Context,
	files []types.FileJob,
	jobs int,
	process func(ctx context.Context, ps parsers, job types.FileJob) (R, bool, error),
) ([]R, error) {
	if len(files) == 0 {
		return []R{}, nil
	}

	results := make([]R, len(files))
	kept := make([]bool, len(files))
	errs := make([]error, len(files))
	jobQueue := make(chan int, 128)
	var wg sync.WaitGroup

	workerCount := jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	worker := func() {
		defer wg.Done()
		ps := parsers{}
		for i := range jobQueue {
			if ctx.Err() != nil {
				continue
			}
			results[i], kept[i], errs[i] = process(ctx, ps, files[i])
		}
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go worker()
	}

	go func() {
		defer close(jobQueue)
		for i := range files {
			select {
			case jobQueue <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	var merr *multierror.Error
	out := make([]R, 0, len(files))
	for i := range files {
		if errs[i] != nil {
			merr = multierror.Append(merr, errors.Wrap(errs[i], files[i].DisplayPath))
			continue
		}
		if kept[i] {
			out = append(out, results[i])
		}
	}
	if err := ctx.Err(); err != nil {
		merr = multierror.Append(merr, err)
	}
	return out, merr.ErrorOrNil()
}
