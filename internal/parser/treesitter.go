package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// parseTree parses source with the given grammar and returns the root node.
// A fresh sitter.Parser is created per call; sitter.Parser instances are not
// safe for concurrent use and extraction runs across worker goroutines.
func parseTree(ctx context.Context, lang *sitter.Language, source []byte) (*sitter.Node, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang)

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrSyntax
	}
	return root, nil
}

// nodeText returns the source text covered by a node
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeLine returns the 1-indexed start line of a node
func nodeLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// firstChildOfType returns the first direct child with the given type
func firstChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// hasChildToken reports whether a direct child covers exactly the given token
func hasChildToken(node *sitter.Node, source []byte, token string) bool {
	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child != nil && nodeText(child, source) == token {
			return true
		}
	}
	return false
}

// firstIdentifier returns the text of the first identifier-like descendant
func firstIdentifier(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Type() == "identifier" {
		return nodeText(node, source)
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if name := firstIdentifier(node.Child(int(i)), source); name != "" {
			return name
		}
	}
	return ""
}
