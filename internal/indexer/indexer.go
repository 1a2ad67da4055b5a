// Package indexer orchestrates workspace scanning: it walks the tree,
// runs the REST extraction core over each supported source file, and keeps
// the graph store in sync, both for full scans and for incremental updates
// driven by the file watcher.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/unit-mesh/autodev-context/internal/graph"
	"github.com/unit-mesh/autodev-context/internal/query"
	"github.com/unit-mesh/autodev-context/internal/restapi"
	"github.com/unit-mesh/autodev-context/internal/structurer"
	"github.com/unit-mesh/autodev-context/internal/watcher"
)

// Config holds configuration for the Indexer.
type Config struct {
	GraphStore    graph.Store
	WatcherConfig *watcher.Config
	WorkspaceRoot string
	Workers       int // parallel file analyses during a full scan; defaults to 4
	Verbose       bool
	Logger        func(format string, args ...any)
}

// Stats holds statistics about the indexing state.
type Stats struct {
	FilesIndexed  int       `json:"files_indexed"`
	NodesTotal    int64     `json:"nodes_total"`
	EdgesTotal    int64     `json:"edges_total"`
	LastIndexTime time.Time `json:"last_index_time"`
	Errors        []string  `json:"errors,omitempty"`
}

// Indexer drives file analysis and graph store updates.
type Indexer struct {
	store      graph.Store
	wcfg       *watcher.Config
	matcher    *watcher.ExcludeMatcher
	root       string
	workers    int
	verbose    bool
	log        func(format string, args ...any)
	structurer structurer.Structurer

	mu           sync.Mutex
	filesIndexed int
	errors       []string
	lastIndex    time.Time
	changedFiles map[string]struct{}
}

// New creates an Indexer with the given configuration.
func New(cfg Config) *Indexer {
	var excludes []string
	if cfg.WatcherConfig != nil {
		excludes = cfg.WatcherConfig.ExcludePatterns
	}
	logFn := cfg.Logger
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Indexer{
		store:        cfg.GraphStore,
		wcfg:         cfg.WatcherConfig,
		matcher:      watcher.NewExcludeMatcher(excludes),
		root:         cfg.WorkspaceRoot,
		workers:      workers,
		verbose:      cfg.Verbose,
		log:          logFn,
		structurer:   structurer.New(),
		changedFiles: make(map[string]struct{}),
	}
}

// Store returns the underlying graph store used by this Indexer.
func (idx *Indexer) Store() graph.Store {
	return idx.store
}

// HasChanges reports whether any files have been indexed since creation.
func (idx *Indexer) HasChanges() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.changedFiles) > 0
}

// ChangedFiles returns a copy of the relative paths of indexed files.
func (idx *Indexer) ChangedFiles() []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	files := make([]string, 0, len(idx.changedFiles))
	for f := range idx.changedFiles {
		files = append(files, f)
	}
	return files
}

// ResetChanges clears the set of changed files, typically after the linker
// has consumed them.
func (idx *Indexer) ResetChanges() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.changedFiles = make(map[string]struct{})
}

// toRelativePath converts an absolute file path to a workspace-relative one.
// Paths outside the workspace are returned as-is.
func (idx *Indexer) toRelativePath(absPath string) string {
	if idx.root == "" {
		return absPath
	}
	rel, err := filepath.Rel(idx.root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// IndexFile analyzes a single file and updates the graph store. filePath
// must be an absolute path; it is converted to a workspace-relative path for
// all graph data. Files with no registered grammar are silently skipped.
func (idx *Indexer) IndexFile(ctx context.Context, filePath string) error {
	languageID, ok := query.LanguageForFile(filePath)
	if !ok {
		return nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", filePath, err)
	}

	relPath := idx.toRelativePath(filePath)

	if idx.verbose {
		idx.log("Analyzing %s (%s)...", relPath, languageID)
	}

	model, err := idx.structurer.Structure(ctx, content, relPath)
	if err != nil {
		return fmt.Errorf("structure %s: %w", relPath, err)
	}

	// Route classification needs the absolute path: relative paths from a
	// workspace rooted at the Next.js project itself ("app/api/...") lack
	// the leading separator the /app/api/ and /pages/api/ checks expect.
	// The relative path is kept for everything stored in the graph.
	analyzer := restapi.ForFile(filePath, restapi.WithLogger(idx.log))
	resources := analyzer.Analyze(ctx, content, filePath, idx.root)
	demands := analyzer.Demands()

	nodes, edges := buildGraph(relPath, languageID, model, resources, demands)

	// Delete old nodes for this file to support incremental updates.
	if err := idx.store.DeleteByFile(ctx, relPath); err != nil {
		return fmt.Errorf("delete old nodes for %s: %w", relPath, err)
	}
	for _, node := range nodes {
		if err := idx.store.AddNode(ctx, node); err != nil {
			return fmt.Errorf("add node %s: %w", node.ID, err)
		}
	}
	for _, edge := range edges {
		if err := idx.store.AddEdge(ctx, edge); err != nil {
			return fmt.Errorf("add edge %s: %w", edge.ID, err)
		}
	}

	idx.mu.Lock()
	idx.filesIndexed++
	idx.lastIndex = time.Now()
	idx.changedFiles[relPath] = struct{}{}
	idx.mu.Unlock()

	if idx.verbose {
		idx.log("  -> %d nodes, %d edges (%d resources, %d demands)",
			len(nodes), len(edges), len(resources), len(demands))
	}
	return nil
}

// IndexDirectory walks a directory tree and indexes all supported files
// using a bounded worker pool.
func (idx *Indexer) IndexDirectory(ctx context.Context, dirPath string) error {
	if idx.verbose {
		idx.log("Scanning directory: %s", dirPath)
	}
	dirStart := time.Now()

	var paths []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if info.IsDir() {
			if idx.matcher.Match(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if idx.matcher.Match(path) {
			return nil
		}
		if _, ok := query.LanguageForFile(path); !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < idx.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if err := idx.IndexFile(ctx, path); err != nil {
					idx.mu.Lock()
					idx.errors = append(idx.errors, fmt.Sprintf("%s: %v", path, err))
					idx.mu.Unlock()
				}
			}
		}()
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	if idx.verbose {
		idx.log("  Directory complete: %s (%d files in %s)", dirPath, len(paths), time.Since(dirStart))
	}
	return nil
}

// Start performs an initial full index of all configured paths, then watches
// for changes and processes them incrementally. It blocks until the context
// is cancelled.
func (idx *Indexer) Start(ctx context.Context) error {
	if idx.wcfg == nil {
		return fmt.Errorf("watcher config is required")
	}

	indexStart := time.Now()
	for _, path := range idx.wcfg.Paths {
		if err := idx.IndexDirectory(ctx, path); err != nil {
			return fmt.Errorf("initial index of %s: %w", path, err)
		}
	}
	if idx.verbose {
		stats := idx.Stats()
		idx.log("Initial indexing complete: %d files, %d nodes, %d edges in %s",
			stats.FilesIndexed, stats.NodesTotal, stats.EdgesTotal, time.Since(indexStart))
	}

	w := watcher.New(*idx.wcfg)
	defer w.Close()

	events, err := w.Start(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			idx.handleEvent(ctx, evt)
		}
	}
}

func (idx *Indexer) handleEvent(ctx context.Context, evt watcher.Event) {
	switch evt.Op {
	case watcher.Create, watcher.Write:
		if err := idx.IndexFile(ctx, evt.Path); err != nil {
			idx.mu.Lock()
			idx.errors = append(idx.errors, fmt.Sprintf("index %s: %v", evt.Path, err))
			idx.mu.Unlock()
		}
	case watcher.Remove, watcher.Rename:
		relPath := idx.toRelativePath(evt.Path)
		if err := idx.store.DeleteByFile(ctx, relPath); err != nil {
			idx.mu.Lock()
			idx.errors = append(idx.errors, fmt.Sprintf("delete %s: %v", relPath, err))
			idx.mu.Unlock()
		}
	}
}

// Stats returns current indexing statistics.
func (idx *Indexer) Stats() Stats {
	idx.mu.Lock()
	stats := Stats{
		FilesIndexed:  idx.filesIndexed,
		LastIndexTime: idx.lastIndex,
		Errors:        make([]string, len(idx.errors)),
	}
	copy(stats.Errors, idx.errors)
	idx.mu.Unlock()

	if gs, err := idx.store.Stats(context.Background()); err == nil {
		stats.NodesTotal = gs.NodeCount
		stats.EdgesTotal = gs.EdgeCount
	}
	return stats
}
