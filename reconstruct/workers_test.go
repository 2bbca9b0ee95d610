package reconstruct

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/lang"
	"github.com/arjunmahishi/reconstruct/scanner"
	"github.com/arjunmahishi/reconstruct/types"
)

// TestRunWorkers tests the generic worker pool for concurrency correctness.
// Run with -race flag to detect race conditions: go test -race
func TestRunWorkers(t *testing.T) {
	tests := []struct {
		name      string
		fileCount int
		jobs      int
	}{
		{"single_file_single_worker", 1, 1},
		{"multiple_files_single_worker", 5, 1},
		{"multiple_files_multiple_workers", 10, 4},
		{"more_workers_than_files", 3, 10},
		{"many_files_high_concurrency", 50, 16},
		{"zero_jobs_defaults_to_one", 5, 0},
		{"empty_files", 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			expected := generateTestFiles(t, tmpDir, tc.fileCount)

			sc := scanner.New(scanner.Config{
				Root:      tmpDir,
				Languages: []lang.Language{lang.Get("typescript")},
			})
			files, err := sc.Collect()
			require.NoError(t, err)
			require.Len(t, files, tc.fileCount)

			results, err := runWorkers(context.Background(), files, tc.jobs, className)
			require.NoError(t, err)
			require.Equal(t, expected, results, "every class found once, in file order")
		})
	}
}

func TestRunWorkersCollectsErrors(t *testing.T) {
	tmpDir := t.TempDir()
	generateTestFiles(t, tmpDir, 3)
	files, err := scanner.New(scanner.Config{
		Root:      tmpDir,
		Languages: []lang.Language{lang.Get("typescript")},
	}).Collect()
	require.NoError(t, err)

	files = append(files, types.FileJob{AbsPath: filepath.Join(tmpDir, "missing.ts"), DisplayPath: "missing.ts", Language: "typescript"})
	files = append(files, types.FileJob{AbsPath: files[0].AbsPath, DisplayPath: "odd.go", Language: "go"})

	results, err := runWorkers(context.Background(), files, 2, className)
	require.Len(t, results, 3)
	require.ErrorContains(t, err, "missing.ts: read file")
	require.ErrorContains(t, err, "odd.go: go language not registered")
}

func TestRunWorkersCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	generateTestFiles(t, tmpDir, 10)
	files, err := scanner.New(scanner.Config{
		Root:      tmpDir,
		Languages: []lang.Language{lang.Get("typescript")},
	}).Collect()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := runWorkers(ctx, files, 4, className)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
}

// generateTestFiles creates N TypeScript files, each with a unique class.
// Returns the expected class names in lexical file order.
func generateTestFiles(t *testing.T, dir string, count int) []string {
	t.Helper()

	expected := []string{}
	for i := range count {
		name := fmt.Sprintf("Class%03d", i)
		content := fmt.Sprintf("export class %s {\n  run() {}\n}\n", name)
		path := filepath.Join(dir, fmt.Sprintf("file_%03d.ts", i))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		expected = append(expected, name)
	}
	return expected
}

// className is a process function that returns the name of the file's first class.
func className(ctx context.Context, ps parsers, job types.FileJob) (string, bool, error) {
	p, err := ps.get(job.Language)
	if err != nil {
		return "", false, err
	}
	source, err := os.ReadFile(job.AbsPath)
	if err != nil {
		return "", false, errors.Wrap(err, "read file")
	}
	file, err := p.Parse(ctx, source)
	if err != nil {
		return "", false, err
	}
	for _, stmt := range file.Program.Stmts {
		if class, ok := stmt.(*ast.Class); ok {
			return class.Name, true, nil
		}
	}
	return "", false, nil
}
