package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// JavaScript extracts symbols and imports from JavaScript source
type JavaScript struct{}

// NewJavaScript creates a JavaScript parser
func NewJavaScript() *JavaScript {
	return &JavaScript{}
}

// Language returns the language identifier
func (p *JavaScript) Language() string { return "javascript" }

// Extensions returns the handled file extensions
func (p *JavaScript) Extensions() []string { return []string{".js", ".jsx", ".mjs"} }

// Extract parses JavaScript source
func (p *JavaScript) Extract(ctx context.Context, path string, source []byte) (*FileSyntax, error) {
	root, err := parseTree(ctx, javascript.GetLanguage(), source)
	if err != nil {
		return nil, err
	}
	return ecmaExtract(root, source, path), nil
}

// TypeScript extracts symbols and imports from TypeScript source.
// The TS and TSX grammars share node types with JavaScript for every
// construct the extractor walks, so the walker is shared.
type TypeScript struct{}

// NewTypeScript creates a TypeScript parser
func NewTypeScript() *TypeScript {
	return &TypeScript{}
}

// Language returns the language identifier
func (p *TypeScript) Language() string { return "typescript" }

// Extensions returns the handled file extensions
func (p *TypeScript) Extensions() []string { return []string{".ts", ".tsx"} }

// Extract parses TypeScript source
func (p *TypeScript) Extract(ctx context.Context, path string, source []byte) (*FileSyntax, error) {
	lang := typescript.GetLanguage()
	if strings.HasSuffix(strings.ToLower(path), ".tsx") {
		lang = tsx.GetLanguage()
	}

	root, err := parseTree(ctx, lang, source)
	if err != nil {
		return nil, err
	}
	return ecmaExtract(root, source, path), nil
}

// ecmaExtract walks a JavaScript/TypeScript tree collecting classes,
// functions, methods and ES import statements.
func ecmaExtract(root *sitter.Node, source []byte, path string) *FileSyntax {
	syntax := &FileSyntax{}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		switch node.Type() {
		case "class_declaration":
			syntax.Symbols = append(syntax.Symbols, ecmaClassSymbol(node, source, path))
		case "function_declaration", "generator_function_declaration", "method_definition":
			if sym, ok := ecmaFunctionSymbol(node, source, path); ok {
				syntax.Symbols = append(syntax.Symbols, sym)
			}
		case "import_statement":
			syntax.Imports = append(syntax.Imports, ecmaImports(node, source, path)...)
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}
	walk(root)

	return syntax
}

func ecmaClassSymbol(node *sitter.Node, source []byte, path string) Symbol {
	sym := Symbol{
		Name:       nodeText(node.ChildByFieldName("name"), source),
		Kind:       KindClass,
		File:       path,
		Line:       nodeLine(node),
		Decorators: ecmaDecorators(node, source),
	}

	if heritage := firstChildOfType(node, "class_heritage"); heritage != nil {
		for i := uint32(0); i < heritage.NamedChildCount(); i++ {
			base := heritage.NamedChild(int(i))
			if base == nil {
				continue
			}
			if base.Type() == "identifier" || base.Type() == "member_expression" {
				sym.Bases = append(sym.Bases, nodeText(base, source))
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint32(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(int(i))
			if member != nil && member.Type() == "method_definition" {
				sym.Members = append(sym.Members, nodeText(member.ChildByFieldName("name"), source))
			}
		}
	}

	return sym
}

func ecmaFunctionSymbol(node *sitter.Node, source []byte, path string) (Symbol, bool) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return Symbol{}, false
	}

	kind := KindFunction
	if hasChildToken(node, source, "async") {
		kind = KindAsyncFunction
	}

	sym := Symbol{
		Name:       name,
		Kind:       kind,
		File:       path,
		Line:       nodeLine(node),
		Decorators: ecmaDecorators(node, source),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := uint32(0); i < params.NamedChildCount(); i++ {
			param := params.NamedChild(int(i))
			if param == nil {
				continue
			}
			if pname := firstIdentifier(param, source); pname != "" {
				sym.Params = append(sym.Params, pname)
			}
		}
	}

	return sym, true
}

// ecmaImports maps ES import forms onto the edge schema: named and default
// imports become "from" edges (they bind a specific exported name), bare and
// namespace imports become "direct" edges.
func ecmaImports(node *sitter.Node, source []byte, path string) []ImportEdge {
	module := strings.Trim(nodeText(node.ChildByFieldName("source"), source), "\"'`")

	clause := firstChildOfType(node, "import_clause")
	if clause == nil {
		// import "module" - side effect only
		return []ImportEdge{{File: path, Module: module, Kind: EdgeDirect, Line: nodeLine(node)}}
	}

	var edges []ImportEdge
	for i := uint32(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(int(i))
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			// import Foo from "module"
			edges = append(edges, ImportEdge{
				File:   path,
				Module: module,
				Name:   nodeText(child, source),
				Kind:   EdgeFrom,
				Line:   nodeLine(child),
			})
		case "namespace_import":
			// import * as ns from "module"
			edges = append(edges, ImportEdge{
				File:   path,
				Module: module,
				Alias:  firstIdentifier(child, source),
				Kind:   EdgeDirect,
				Line:   nodeLine(child),
			})
		case "named_imports":
			// import { a, b as c } from "module"
			for j := uint32(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(int(j))
				if spec == nil || spec.Type() != "import_specifier" {
					continue
				}
				edges = append(edges, ImportEdge{
					File:   path,
					Module: module,
					Name:   nodeText(spec.ChildByFieldName("name"), source),
					Alias:  nodeText(spec.ChildByFieldName("alias"), source),
					Kind:   EdgeFrom,
					Line:   nodeLine(spec),
				})
			}
		}
	}

	if len(edges) == 0 {
		edges = append(edges, ImportEdge{File: path, Module: module, Kind: EdgeDirect, Line: nodeLine(node)})
	}
	return edges
}

// ecmaDecorators collects decorator names preceding a class or method
func ecmaDecorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child != nil && child.Type() == "decorator" {
			decorators = append(decorators, decoratorName(nodeText(child, source)))
		}
	}
	// Decorators may also precede the declaration as siblings inside an
	// export statement or class body
	if prev := node.PrevNamedSibling(); prev != nil && prev.Type() == "decorator" {
		for p := prev; p != nil && p.Type() == "decorator"; p = p.PrevNamedSibling() {
			decorators = append([]string{decoratorName(nodeText(p, source))}, decorators...)
		}
	}
	return decorators
}
