package indexer

import (
	"context"
	"fmt"
	"time"

	"symidx/internal/logging"
	"symidx/internal/parser"
)

// Extractor turns one file's content into a FileRecord by dispatching to
// the language parser registered for its extension.
type Extractor struct {
	registry *parser.Registry
	logger   *logging.Logger
}

// NewExtractor creates an extractor over the given parser registry
func NewExtractor(registry *parser.Registry, logger *logging.Logger) *Extractor {
	return &Extractor{
		registry: registry,
		logger:   logger,
	}
}

// Supports reports whether the extractor can handle the given path
func (e *Extractor) Supports(path string) bool {
	return e.registry.Supports(path)
}

// ExtractRecord parses content and builds the replacement FileRecord.
// The returned record is complete and immutable; the caller publishes it
// into the Index wholesale.
func (e *Extractor) ExtractRecord(ctx context.Context, path string, content []byte, hash string) (*FileRecord, error) {
	p, ok := e.registry.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no parser for %s", path)
	}

	syntax, err := p.Extract(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	e.logger.Debug("Extracted file", map[string]interface{}{
		"path":     path,
		"language": p.Language(),
		"symbols":  len(syntax.Symbols),
		"imports":  len(syntax.Imports),
	})

	return &FileRecord{
		Path:      path,
		Hash:      hash,
		Symbols:   syntax.Symbols,
		Imports:   syntax.Imports,
		IndexedAt: time.Now().UTC(),
		LineCount: countLines(content),
		ByteSize:  len(content),
	}, nil
}
