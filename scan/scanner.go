// Package scan walks a file tree and extracts package data from every
// manifest file recognized by a registered handler.
package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/git-pkgs/manifests"
)

const defaultConcurrency = 15

// Result is the outcome of parsing one recognized manifest.
type Result struct {
	// Path is the manifest file location as visited under the scan root.
	Path string `json:"path"`

	// PackageRoot is the directory the manifest describes, its parent.
	PackageRoot string `json:"package_root"`

	Ecosystem string `json:"ecosystem"`

	// Package is nil when parsing failed; Err then carries the cause.
	Package *manifests.PackageData `json:"package,omitempty"`
	Err     error                  `json:"-"`
}

// Scanner finds and parses manifests under a root directory.
type Scanner struct {
	concurrency int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency sets the number of manifests parsed in parallel.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a Scanner with the given options.
func New(opts ...Option) *Scanner {
	s := &Scanner{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and parses every file a registered handler recognizes.
// Results are returned in walk order. An individual manifest that fails to
// parse is reported on its Result, not as a scan failure; only a walk error
// or context cancellation aborts the scan.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Result, error) {
	type target struct {
		path    string
		handler manifests.Handler
	}

	var targets []target
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if h := manifests.HandlerFor(path); h != nil {
			targets = append(targets, target{path: path, handler: h})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(targets))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result{
					Path:        tgt.path,
					PackageRoot: filepath.Dir(tgt.path),
					Ecosystem:   tgt.handler.Ecosystem(),
					Err:         ctx.Err(),
				}
				return
			}

			pkg, err := tgt.handler.Parse(tgt.path)
			results[i] = Result{
				Path:        tgt.path,
				PackageRoot: filepath.Dir(tgt.path),
				Ecosystem:   tgt.handler.Ecosystem(),
				Package:     pkg,
				Err:         err,
			}
		}(i, tgt)
	}

	wg.Wait()
	return results, ctx.Err()
}
