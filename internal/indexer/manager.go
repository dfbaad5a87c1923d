package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"symidx/internal/logging"
	"symidx/internal/parser"
)

// Store externalizes snapshots to a TTL-bounded cache. The contract is
// advisory: a miss triggers a rescan and write failures are logged and
// otherwise ignored.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *StoreSnapshot) error
	LoadSnapshot(ctx context.Context) (*StoreSnapshot, bool, error)
}

// StoreSnapshot is the serialized form of the index state
type StoreSnapshot struct {
	Index   Index             `json:"index"`
	Graph   SymbolGraph       `json:"graph"`
	Hashes  map[string]string `json:"hashes"`
	SavedAt time.Time         `json:"savedAt"`
}

// ManagerConfig configures scanning behavior
type ManagerConfig struct {
	RepoRoot         string
	Excludes         []string
	MaxFileSizeBytes int
	Workers          int
}

// Manager owns the Index and SymbolGraph with an explicit lifecycle.
// All mutation routes through it: only one indexing pass (full, incremental
// or hook-triggered) runs at a time, while readers observe an atomically
// swapped immutable snapshot.
type Manager struct {
	config    ManagerConfig
	extractor *Extractor
	store     Store // may be nil when caching is disabled
	logger    *logging.Logger

	current  atomic.Pointer[snapshot]
	state    atomic.Int32
	ready    atomic.Bool
	writerMu sync.Mutex

	lastUpdate atomic.Pointer[time.Time]
}

// NewManager creates a manager over the given parser registry
func NewManager(config ManagerConfig, registry *parser.Registry, store Store, logger *logging.Logger) *Manager {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	m := &Manager{
		config:    config,
		extractor: NewExtractor(registry, logger),
		store:     store,
		logger:    logger,
	}
	m.current.Store(emptySnapshot())
	m.state.Store(int32(StateUninitialized))
	return m
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Ready reports whether at least one snapshot has been published, from a
// completed indexing pass or a warm start. Until then query results would
// be authoritative-looking but empty, so readers must refuse to answer.
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Status returns the externally visible index status. It is always
// well-formed, even before the first pass completes.
func (m *Manager) Status() Status {
	snap := m.current.Load()

	total := 0
	for _, rec := range snap.index {
		total += len(rec.Symbols)
	}

	status := Status{
		State:        m.State().String(),
		FilesIndexed: len(snap.index),
		TotalSymbols: total,
	}
	if t := m.lastUpdate.Load(); t != nil {
		status.LastUpdate = *t
	}
	return status
}

// WarmStart installs the last snapshot from the store, if one exists.
// Returns true when the index became READY from cache.
func (m *Manager) WarmStart(ctx context.Context) bool {
	if m.store == nil {
		return false
	}

	stored, found, err := m.store.LoadSnapshot(ctx)
	if err != nil {
		m.logger.Warn("Cache load failed, falling back to full scan", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if !found {
		return false
	}

	m.writerMu.Lock()
	defer m.writerMu.Unlock()

	snap := &snapshot{
		index:  stored.Index,
		graph:  stored.Graph,
		hashes: stored.Hashes,
		at:     stored.SavedAt,
	}
	if snap.index == nil {
		snap.index = make(Index)
	}
	if snap.graph == nil {
		snap.graph = make(SymbolGraph)
	}
	if snap.hashes == nil {
		snap.hashes = make(map[string]string)
	}

	m.current.Store(snap)
	m.lastUpdate.Store(&stored.SavedAt)
	m.ready.Store(true)
	m.state.Store(int32(StateReady))

	m.logger.Info("Warm start from cache", map[string]interface{}{
		"files":   len(snap.index),
		"savedAt": stored.SavedAt.Format(time.RFC3339),
	})
	return true
}

// FullScan walks the repository and re-indexes every supported file.
// Files missing from disk are reconciled out of the Index.
func (m *Manager) FullScan(ctx context.Context) (BatchResult, error) {
	m.writerMu.Lock()
	defer m.writerMu.Unlock()

	prior := m.State()
	m.state.Store(int32(StateIndexingFull))

	started := time.Now()
	cur := m.current.Load()

	paths, err := m.walkRepo()
	if err != nil {
		// An uninitialized index must not report ready after a failed walk
		m.state.Store(int32(prior))
		return BatchResult{}, fmt.Errorf("walk %s: %w", m.config.RepoRoot, err)
	}

	next, result := m.processBatch(ctx, paths, cur)

	// Full rescans reconcile deletions by re-walking the tree
	walked := make(map[string]bool, len(paths))
	for _, p := range paths {
		walked[p] = true
	}
	for path := range next.index {
		if !walked[path] {
			delete(next.index, path)
			delete(next.hashes, path)
			result.RemovedFiles = append(result.RemovedFiles, path)
		}
	}
	sort.Strings(result.RemovedFiles)

	m.publish(ctx, next, &result, started)
	m.state.Store(int32(StateReady))

	m.logger.Info("Full scan complete", map[string]interface{}{
		"scanned": len(paths),
		"updated": len(result.UpdatedFiles),
		"skipped": result.SkippedFiles,
		"failed":  len(result.FailedFiles),
		"removed": len(result.RemovedFiles),
		"took":    result.Duration.String(),
	})
	return result, nil
}

// UpdateFiles runs the incremental pipeline for an explicit changed-path
// list, synchronously and immediately. Paths whose files no longer exist on
// disk are removed from the Index; the rest flow through change detection,
// extraction and the graph rebuild exactly like a debounced flush.
func (m *Manager) UpdateFiles(ctx context.Context, paths []string) (BatchResult, error) {
	// First contact with the index goes through a full pass
	if m.State() == StateUninitialized {
		return m.FullScan(ctx)
	}

	m.writerMu.Lock()
	defer m.writerMu.Unlock()

	m.state.Store(int32(StateIndexingIncremental))

	started := time.Now()
	cur := m.current.Load()

	var candidates []string
	seen := make(map[string]bool)
	for _, p := range paths {
		rel := m.relPath(p)
		if rel == "" || seen[rel] {
			continue
		}
		seen[rel] = true
		if m.extractor.Supports(rel) && !m.isExcluded(rel) {
			candidates = append(candidates, rel)
		}
	}

	next, result := m.processBatch(ctx, candidates, cur)
	m.publish(ctx, next, &result, started)
	m.state.Store(int32(StateReady))

	m.logger.Info("Incremental update complete", map[string]interface{}{
		"requested": len(paths),
		"updated":   len(result.UpdatedFiles),
		"skipped":   result.SkippedFiles,
		"failed":    len(result.FailedFiles),
		"removed":   len(result.RemovedFiles),
		"took":      result.Duration.String(),
	})
	return result, nil
}

// ScheduleFullScan starts a full rescan in the background without blocking
// the caller.
func (m *Manager) ScheduleFullScan(ctx context.Context) {
	go func() {
		if _, err := m.FullScan(ctx); err != nil {
			m.logger.Error("Scheduled full scan failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}

// fileOutcome is the result of processing one file within a batch
type fileOutcome struct {
	path    string
	record  *FileRecord
	skipped bool
	failed  bool
	removed bool
}

// processBatch runs change detection and extraction for a set of paths and
// returns the next snapshot plus the batch accounting. Extraction is
// parallel across files; the snapshot is assembled afterwards so the graph
// rebuild always observes a consistent post-batch index.
func (m *Manager) processBatch(ctx context.Context, paths []string, cur *snapshot) (*snapshot, BatchResult) {
	outcomes := make([]fileOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = m.processFile(gctx, path, cur.hashes)
			return nil
		})
	}
	_ = g.Wait() // per-file failures are recorded in outcomes, never returned

	next := cur.clone()
	var result BatchResult
	for _, out := range outcomes {
		switch {
		case out.removed:
			if _, existed := next.index[out.path]; existed {
				delete(next.index, out.path)
				delete(next.hashes, out.path)
				result.RemovedFiles = append(result.RemovedFiles, out.path)
			}
		case out.failed:
			result.FailedFiles = append(result.FailedFiles, out.path)
		case out.skipped:
			result.SkippedFiles++
		case out.record != nil:
			next.index[out.path] = out.record
			next.hashes[out.path] = out.record.Hash
			result.UpdatedFiles = append(result.UpdatedFiles, out.path)
		}
	}
	sort.Strings(result.UpdatedFiles)
	sort.Strings(result.FailedFiles)
	sort.Strings(result.RemovedFiles)

	return next, result
}

// processFile handles one file end to end. Every failure mode is contained
// here; nothing it returns aborts the surrounding batch.
func (m *Manager) processFile(ctx context.Context, path string, hashes map[string]string) fileOutcome {
	full := filepath.Join(m.config.RepoRoot, path)

	content, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fileOutcome{path: path, removed: true}
		}
		m.logger.Warn("Unreadable file skipped", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return fileOutcome{path: path, failed: true}
	}

	if m.config.MaxFileSizeBytes > 0 && len(content) > m.config.MaxFileSizeBytes {
		m.logger.Debug("Oversized file skipped", map[string]interface{}{
			"path": path,
			"size": len(content),
		})
		return fileOutcome{path: path, skipped: true}
	}

	if IsBinary(content) {
		m.logger.Debug("Binary file skipped", map[string]interface{}{
			"path": path,
		})
		return fileOutcome{path: path, skipped: true}
	}

	decision := DetectChange(path, content, hashes)
	if !decision.Changed {
		return fileOutcome{path: path, skipped: true}
	}

	record, err := m.extractor.ExtractRecord(ctx, path, content, decision.Hash)
	if err != nil {
		// Parse errors omit symbols for this revision only. The stored
		// digest is left untouched so a later save retries the parse.
		m.logger.Warn("Parse failed, file skipped for this revision", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return fileOutcome{path: path, failed: true}
	}

	return fileOutcome{path: path, record: record}
}

// publish rebuilds the graph over the post-batch index, swaps the snapshot
// and writes it through to the store. Cache write failures never block
// indexing.
func (m *Manager) publish(ctx context.Context, next *snapshot, result *BatchResult, started time.Time) {
	next.graph = BuildGraph(next.index)
	now := time.Now().UTC()
	next.at = now

	m.current.Store(next)
	m.lastUpdate.Store(&now)
	m.ready.Store(true)
	result.Duration = time.Since(started)

	if m.store == nil {
		return
	}
	err := m.store.SaveSnapshot(ctx, &StoreSnapshot{
		Index:   next.index,
		Graph:   next.graph,
		Hashes:  next.hashes,
		SavedAt: now,
	})
	if err != nil {
		m.logger.Warn("Cache write failed, continuing from memory", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// walkRepo collects all supported, non-excluded files relative to the root
func (m *Manager) walkRepo() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(m.config.RepoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // inaccessible entries are skipped, the scan continues
		}

		rel, relErr := filepath.Rel(m.config.RepoRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if m.isExcluded(rel) || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if m.isExcluded(rel) || !m.extractor.Supports(rel) {
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// isExcluded checks a relative path against the exclude patterns. Patterns
// match as globs, as directory prefixes, and as exact names.
func (m *Manager) isExcluded(rel string) bool {
	normalized := filepath.ToSlash(rel)

	for _, pattern := range m.config.Excludes {
		p := filepath.ToSlash(pattern)

		if matched, _ := filepath.Match(p, normalized); matched {
			return true
		}
		if matched, _ := filepath.Match(p, filepath.Base(normalized)); matched {
			return true
		}

		dir := strings.TrimSuffix(p, "/") + "/"
		if strings.HasPrefix(normalized, dir) {
			return true
		}
		if normalized == strings.TrimSuffix(p, "/") {
			return true
		}
	}
	return false
}

// relPath normalizes a possibly absolute changed path to repo-relative form.
// Paths outside the repo root yield "".
func (m *Manager) relPath(p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p))
	}
	rel, err := filepath.Rel(m.config.RepoRoot, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
