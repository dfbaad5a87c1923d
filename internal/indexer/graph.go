package indexer

import "sort"

// BuildGraph derives the file-to-file relationship graph from the current
// Index. Every import edge's referenced name is resolved against the set of
// all known symbol names anywhere in the Index. This is name-based,
// best-effort linking, a deliberate precision/cost tradeoff; it is not type
// resolution.
//
// The graph is always rebuilt wholesale after a batch completes. Patching it
// incrementally would leave stale edges behind when a definition moves.
func BuildGraph(index Index) SymbolGraph {
	// name -> files defining a symbol with that name
	defs := make(map[string][]string)
	for path, rec := range index {
		for _, sym := range rec.Symbols {
			defs[sym.Name] = append(defs[sym.Name], path)
		}
	}

	graph := make(SymbolGraph, len(index))
	for path := range index {
		graph[path] = &FileGraph{}
	}

	forward := make(map[string]map[string]bool)
	for path, rec := range index {
		for _, edge := range rec.Imports {
			if edge.Name == "" || edge.Name == "*" {
				continue
			}
			for _, target := range defs[edge.Name] {
				if target == path {
					continue
				}
				if forward[path] == nil {
					forward[path] = make(map[string]bool)
				}
				forward[path][target] = true
			}
		}
	}

	for path, targets := range forward {
		for target := range targets {
			graph[path].Imports = append(graph[path].Imports, target)
			graph[target].ImportedBy = append(graph[target].ImportedBy, path)
		}
	}

	// Deterministic neighbor order
	for _, fg := range graph {
		sort.Strings(fg.Imports)
		sort.Strings(fg.ImportedBy)
	}

	return graph
}
