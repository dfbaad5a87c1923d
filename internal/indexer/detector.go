package indexer

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// binarySniffLen is how many leading bytes are inspected for NUL when
// deciding whether a file is binary.
const binarySniffLen = 8192

// HashContent computes the content digest used for change detection
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)
}

// IsBinary reports whether content looks like a binary file. Binary files
// are logged and skipped rather than parsed.
func IsBinary(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// ChangeDecision is the outcome of content-addressed change detection
type ChangeDecision struct {
	Path    string
	Hash    string
	Changed bool // false means the stored digest matched: skip re-parse
}

// DetectChange compares a file's freshly computed digest against the stored
// one. Equal digests mean the parse can be skipped entirely.
func DetectChange(path string, content []byte, stored map[string]string) ChangeDecision {
	hash := HashContent(content)
	prev, seen := stored[path]
	return ChangeDecision{
		Path:    path,
		Hash:    hash,
		Changed: !seen || prev != hash,
	}
}

// countLines returns the number of lines in content, matching what an editor
// would report (a trailing newline does not start a new line).
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
