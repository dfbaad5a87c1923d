// Package parser turns source files into the common symbol and import-edge
// schema. Each supported language implements Parser; new languages are added
// behind the same interface rather than special-cased in the indexer.
package parser

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// ErrSyntax is returned when a file cannot be parsed into a usable tree.
var ErrSyntax = errors.New("syntax error")

// SymbolKind classifies an extracted declaration
type SymbolKind string

const (
	// KindClass is a class-like declaration
	KindClass SymbolKind = "class"
	// KindFunction is a synchronous function or method
	KindFunction SymbolKind = "function"
	// KindAsyncFunction is an async function or method
	KindAsyncFunction SymbolKind = "async_function"
)

// EdgeKind classifies an import statement
type EdgeKind string

const (
	// EdgeDirect is an "import module" style dependency
	EdgeDirect EdgeKind = "direct"
	// EdgeFrom is a "from module import name" style dependency
	EdgeFrom EdgeKind = "from"
)

// Symbol is a named declaration extracted from a source file
type Symbol struct {
	Name       string     `json:"name"`
	Kind       SymbolKind `json:"kind"`
	File       string     `json:"file"`
	Line       int        `json:"line"` // 1-indexed
	Members    []string   `json:"members,omitempty"`
	Params     []string   `json:"params,omitempty"`
	Decorators []string   `json:"decorators,omitempty"`
	Bases      []string   `json:"bases,omitempty"`
}

// ImportEdge records a dependency of one file on a name from another module
type ImportEdge struct {
	File   string   `json:"file"`
	Module string   `json:"module"`
	Name   string   `json:"name,omitempty"`
	Alias  string   `json:"alias,omitempty"`
	Kind   EdgeKind `json:"kind"`
	Line   int      `json:"line"` // 1-indexed
}

// FileSyntax is the structural content of one parsed file. Symbol and import
// order follows source order.
type FileSyntax struct {
	Symbols []Symbol
	Imports []ImportEdge
}

// Parser maps one language's declaration and import syntax into the common
// schema.
type Parser interface {
	// Language returns the language identifier, e.g. "python"
	Language() string

	// Extensions returns the file extensions handled, e.g. [".py"]
	Extensions() []string

	// Extract parses source and collects symbols and import edges.
	// The path is recorded on every produced Symbol and ImportEdge.
	Extract(ctx context.Context, path string, source []byte) (*FileSyntax, error)
}

// Registry dispatches files to parsers by extension
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry creates a registry over the given parsers. Later parsers win
// on extension conflicts.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{byExt: make(map[string]Parser)}
	for _, p := range parsers {
		for _, ext := range p.Extensions() {
			r.byExt[strings.ToLower(ext)] = p
		}
	}
	return r
}

// DefaultRegistry returns a registry with all built-in language parsers
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewPython(),
		NewJavaScript(),
		NewTypeScript(),
	)
}

// ForPath returns the parser responsible for a file path, if any
func (r *Registry) ForPath(path string) (Parser, bool) {
	p, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// Supports reports whether any parser handles the given path
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// Extensions returns the sorted set of all registered extensions
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
