package indexer

import (
	"strings"
	"testing"
)

func TestHashSensitivity(t *testing.T) {
	base := []byte("class Foo:\n    pass\n")
	same := []byte("class Foo:\n    pass\n")
	oneChar := []byte("class Fop:\n    pass\n")

	if HashContent(base) != HashContent(same) {
		t.Error("identical content produced different digests")
	}
	if HashContent(base) == HashContent(oneChar) {
		t.Error("one-character change did not change the digest")
	}
}

func TestDetectChange(t *testing.T) {
	content := []byte("def f():\n    pass\n")
	hash := HashContent(content)

	tests := []struct {
		name        string
		stored      map[string]string
		wantChanged bool
	}{
		{"first seen", map[string]string{}, true},
		{"unchanged", map[string]string{"f.py": hash}, false},
		{"digest differs", map[string]string{"f.py": "deadbeef"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetectChange("f.py", content, tt.stored)
			if d.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", d.Changed, tt.wantChanged)
			}
			if d.Hash != hash {
				t.Errorf("Hash = %q, want %q", d.Hash, hash)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"plain text", []byte("hello world\n"), false},
		{"empty", []byte{}, false},
		{"nul byte", []byte{'a', 0, 'b'}, true},
		{"nul beyond sniff window", append([]byte(strings.Repeat("a", binarySniffLen)), 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinary(tt.content); got != tt.want {
				t.Errorf("IsBinary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"one line no newline", "abc", 1},
		{"one line with newline", "abc\n", 1},
		{"three lines", "a\nb\nc\n", 3},
		{"trailing content", "a\nb", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countLines([]byte(tt.content)); got != tt.want {
				t.Errorf("countLines(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
