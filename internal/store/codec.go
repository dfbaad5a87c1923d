package store

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"symidx/internal/indexer"
)

// Snapshots are stored as zstd-compressed JSON. Symbol tables compress
// well: names and paths repeat across the index and the graph.

func encodeSnapshot(snap *indexer.StoreSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

func decodeSnapshot(blob []byte) (*indexer.StoreSnapshot, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap indexer.StoreSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
