package indexer

import (
	"sort"
	"strings"
)

// ContextForSymbol answers "what/where/who-uses" for an exact symbol name.
// It reads the current snapshot only and has no side effects. No matches
// yield an empty-but-valid result; an index that has not published its
// first snapshot is an error, so a long initial scan never masquerades as
// "symbol does not exist".
func (m *Manager) ContextForSymbol(name string) (*SymbolContext, error) {
	if !m.Ready() {
		return nil, ErrNotReady
	}
	snap := m.current.Load()
	return contextFromSnapshot(snap, name), nil
}

func contextFromSnapshot(snap *snapshot, name string) *SymbolContext {
	result := &SymbolContext{
		Definitions:    []Definition{},
		Usages:         []Usage{},
		RelatedSymbols: []RelatedSymbol{},
	}

	definingFiles := make(map[string]bool)

	paths := make([]string, 0, len(snap.index))
	for path := range snap.index {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		rec := snap.index[path]
		for _, sym := range rec.Symbols {
			if sym.Name != name {
				continue
			}
			definingFiles[path] = true
			result.Definitions = append(result.Definitions, Definition{
				File:       path,
				Kind:       string(sym.Kind),
				Line:       sym.Line,
				Members:    sym.Members,
				Params:     sym.Params,
				Decorators: sym.Decorators,
				Bases:      sym.Bases,
			})
		}
	}

	for _, path := range paths {
		rec := snap.index[path]
		for _, edge := range rec.Imports {
			if edge.Name == name {
				result.Usages = append(result.Usages, Usage{
					File:   path,
					Module: edge.Module,
					Line:   edge.Line,
				})
				break // one usage entry per file
			}
		}
	}

	for _, path := range paths {
		if !definingFiles[path] {
			continue
		}
		for _, sym := range snap.index[path].Symbols {
			if sym.Name == name {
				continue
			}
			result.RelatedSymbols = append(result.RelatedSymbols, RelatedSymbol{
				Name: sym.Name,
				Kind: string(sym.Kind),
				File: path,
				Line: sym.Line,
			})
		}
	}

	return result
}

// Search performs case-insensitive substring matching over all symbol
// names. When contextDepth > 0 each hit carries the assembled context for
// its symbol.
func (m *Manager) Search(query string, contextDepth int) ([]SearchHit, error) {
	if !m.Ready() {
		return nil, ErrNotReady
	}
	if strings.TrimSpace(query) == "" {
		return []SearchHit{}, nil
	}

	snap := m.current.Load()
	needle := strings.ToLower(query)

	paths := make([]string, 0, len(snap.index))
	for path := range snap.index {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hits := []SearchHit{}
	for _, path := range paths {
		for _, sym := range snap.index[path].Symbols {
			if !strings.Contains(strings.ToLower(sym.Name), needle) {
				continue
			}
			hit := SearchHit{
				Symbol: sym.Name,
				Kind:   string(sym.Kind),
				File:   path,
				Line:   sym.Line,
			}
			if contextDepth > 0 {
				hit.Context = contextFromSnapshot(snap, sym.Name)
			}
			hits = append(hits, hit)
		}
	}

	// Exact matches first, then shorter names, then stable path order
	sort.SliceStable(hits, func(i, j int) bool {
		iExact := strings.EqualFold(hits[i].Symbol, query)
		jExact := strings.EqualFold(hits[j].Symbol, query)
		if iExact != jExact {
			return iExact
		}
		if len(hits[i].Symbol) != len(hits[j].Symbol) {
			return len(hits[i].Symbol) < len(hits[j].Symbol)
		}
		return false
	})

	return hits, nil
}

// Graph returns the current relationship graph entry for a file, if any
func (m *Manager) Graph(path string) (*FileGraph, bool) {
	snap := m.current.Load()
	fg, ok := snap.graph[path]
	return fg, ok
}
