// Package indexer maintains the in-memory symbol index and relationship
// graph for a repository and answers context queries against it.
//
// The Index is the single source of truth. The external store is a warm-start
// cache only: losing it costs a rebuild, never correctness.
package indexer

import (
	"errors"
	"time"

	"symidx/internal/parser"
)

// ErrNotReady is returned by queries before the first index pass completes
var ErrNotReady = errors.New("index not ready")

// FileRecord holds everything the index knows about one file. Records are
// replaced wholesale on re-index, never mutated field by field.
type FileRecord struct {
	Path      string              `json:"path"` // relative to repo root
	Hash      string              `json:"hash"` // sha256 of content
	Symbols   []parser.Symbol     `json:"symbols"`
	Imports   []parser.ImportEdge `json:"imports"`
	IndexedAt time.Time           `json:"indexedAt"`
	LineCount int                 `json:"lineCount"`
	ByteSize  int                 `json:"byteSize"`
}

// Index maps relative file path to its record
type Index map[string]*FileRecord

// FileGraph is the per-file adjacency derived from resolved import edges
type FileGraph struct {
	Imports    []string `json:"imports"`
	ImportedBy []string `json:"imported_by"`
}

// SymbolGraph maps file path to its forward and reverse adjacency. It is
// always rebuilt wholesale from the current Index, never patched.
type SymbolGraph map[string]*FileGraph

// State represents the index lifecycle
type State int

const (
	// StateUninitialized means no index pass has completed yet
	StateUninitialized State = iota
	// StateIndexingFull means a full scan is in progress
	StateIndexingFull
	// StateReady means the index is serving queries
	StateReady
	// StateIndexingIncremental means an incremental batch is in progress
	StateIndexingIncremental
)

// String returns the state name used in status responses
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIndexingFull:
		return "indexing_full"
	case StateReady:
		return "ready"
	case StateIndexingIncremental:
		return "indexing_incremental"
	default:
		return "unknown"
	}
}

// BatchResult reports what a full or incremental pass actually did.
// Per-file failures never escape a batch; they are counted here instead.
type BatchResult struct {
	UpdatedFiles []string      `json:"updated_files"`
	SkippedFiles int           `json:"skipped_files"`
	FailedFiles  []string      `json:"failed_files"`
	RemovedFiles []string      `json:"removed_files"`
	Duration     time.Duration `json:"-"`
}

// Status is the externally visible index status
type Status struct {
	State        string    `json:"state"`
	FilesIndexed int       `json:"files_indexed"`
	TotalSymbols int       `json:"total_symbols"`
	LastUpdate   time.Time `json:"last_update"`
}

// SymbolContext is the answer to a "what/where/who-uses" query
type SymbolContext struct {
	Definitions    []Definition    `json:"definitions"`
	Usages         []Usage         `json:"usages"`
	RelatedSymbols []RelatedSymbol `json:"related_symbols"`
}

// Definition is one place a symbol with the queried name is declared
type Definition struct {
	File       string   `json:"file"`
	Kind       string   `json:"kind"`
	Line       int      `json:"line"`
	Members    []string `json:"members,omitempty"`
	Params     []string `json:"params,omitempty"`
	Decorators []string `json:"decorators,omitempty"`
	Bases      []string `json:"bases,omitempty"`
}

// Usage is one file whose import edges reference the queried name
type Usage struct {
	File   string `json:"file"`
	Module string `json:"module"`
	Line   int    `json:"line"`
}

// RelatedSymbol is another symbol declared alongside a definition
type RelatedSymbol struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// SearchHit is one free-text search result
type SearchHit struct {
	Symbol  string         `json:"symbol"`
	Kind    string         `json:"kind"`
	File    string         `json:"file"`
	Line    int            `json:"line"`
	Context *SymbolContext `json:"context,omitempty"`
}

// snapshot is the immutable view readers observe. Writers build a new
// snapshot and swap it atomically; readers never see a torn update.
type snapshot struct {
	index  Index
	graph  SymbolGraph
	hashes map[string]string
	at     time.Time
}

func emptySnapshot() *snapshot {
	return &snapshot{
		index:  make(Index),
		graph:  make(SymbolGraph),
		hashes: make(map[string]string),
	}
}

// clone copies the top-level maps. FileRecords are immutable once published,
// so the copy is shallow below the map level.
func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		index:  make(Index, len(s.index)),
		graph:  make(SymbolGraph, len(s.graph)),
		hashes: make(map[string]string, len(s.hashes)),
		at:     s.at,
	}
	for path, rec := range s.index {
		next.index[path] = rec
	}
	for path, fg := range s.graph {
		next.graph[path] = fg
	}
	for path, h := range s.hashes {
		next.hashes[path] = h
	}
	return next
}
