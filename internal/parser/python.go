package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python extracts symbols and imports from Python source
type Python struct{}

// NewPython creates a Python parser
func NewPython() *Python {
	return &Python{}
}

// Language returns the language identifier
func (p *Python) Language() string { return "python" }

// Extensions returns the handled file extensions
func (p *Python) Extensions() []string { return []string{".py"} }

// Extract parses Python source and collects class definitions, function
// definitions (sync and async) and import statements.
func (p *Python) Extract(ctx context.Context, path string, source []byte) (*FileSyntax, error) {
	root, err := parseTree(ctx, python.GetLanguage(), source)
	if err != nil {
		return nil, err
	}

	syntax := &FileSyntax{}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		switch node.Type() {
		case "class_definition":
			syntax.Symbols = append(syntax.Symbols, p.classSymbol(node, source, path))
		case "function_definition":
			syntax.Symbols = append(syntax.Symbols, p.functionSymbol(node, source, path))
		case "import_statement":
			syntax.Imports = append(syntax.Imports, p.directImports(node, source, path)...)
		case "import_from_statement":
			syntax.Imports = append(syntax.Imports, p.fromImports(node, source, path)...)
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}
	walk(root)

	return syntax, nil
}

// classSymbol builds a class Symbol: name, line, base names, member function
// names and attached decorators.
func (p *Python) classSymbol(node *sitter.Node, source []byte, path string) Symbol {
	sym := Symbol{
		Name:       nodeText(node.ChildByFieldName("name"), source),
		Kind:       KindClass,
		File:       path,
		Line:       nodeLine(node),
		Decorators: pythonDecorators(node, source),
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint32(0); i < supers.NamedChildCount(); i++ {
			arg := supers.NamedChild(int(i))
			if arg == nil {
				continue
			}
			// Positional bases only; keyword arguments (metaclass=...) are not types
			if arg.Type() == "identifier" || arg.Type() == "attribute" {
				sym.Bases = append(sym.Bases, nodeText(arg, source))
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint32(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(int(i))
			if member == nil {
				continue
			}
			if member.Type() == "decorated_definition" {
				member = member.ChildByFieldName("definition")
			}
			if member != nil && member.Type() == "function_definition" {
				sym.Members = append(sym.Members, nodeText(member.ChildByFieldName("name"), source))
			}
		}
	}

	return sym
}

// functionSymbol builds a function Symbol; async defs get their own kind
func (p *Python) functionSymbol(node *sitter.Node, source []byte, path string) Symbol {
	kind := KindFunction
	if hasChildToken(node, source, "async") {
		kind = KindAsyncFunction
	}

	sym := Symbol{
		Name:       nodeText(node.ChildByFieldName("name"), source),
		Kind:       kind,
		File:       path,
		Line:       nodeLine(node),
		Decorators: pythonDecorators(node, source),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := uint32(0); i < params.NamedChildCount(); i++ {
			param := params.NamedChild(int(i))
			if param == nil {
				continue
			}
			if name := firstIdentifier(param, source); name != "" {
				sym.Params = append(sym.Params, name)
			}
		}
	}

	return sym
}

// directImports handles "import a.b, c as d"
func (p *Python) directImports(node *sitter.Node, source []byte, path string) []ImportEdge {
	var edges []ImportEdge
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(int(i))
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			edges = append(edges, ImportEdge{
				File:   path,
				Module: nodeText(child, source),
				Kind:   EdgeDirect,
				Line:   nodeLine(child),
			})
		case "aliased_import":
			edges = append(edges, ImportEdge{
				File:   path,
				Module: nodeText(child.ChildByFieldName("name"), source),
				Alias:  nodeText(child.ChildByFieldName("alias"), source),
				Kind:   EdgeDirect,
				Line:   nodeLine(child),
			})
		}
	}
	return edges
}

// fromImports handles "from a.b import c, d as e" and "from a import *"
func (p *Python) fromImports(node *sitter.Node, source []byte, path string) []ImportEdge {
	moduleNode := node.ChildByFieldName("module_name")
	module := nodeText(moduleNode, source)

	var edges []ImportEdge
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(int(i))
		if child == nil || child == moduleNode {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			edges = append(edges, ImportEdge{
				File:   path,
				Module: module,
				Name:   nodeText(child, source),
				Kind:   EdgeFrom,
				Line:   nodeLine(child),
			})
		case "aliased_import":
			edges = append(edges, ImportEdge{
				File:   path,
				Module: module,
				Name:   nodeText(child.ChildByFieldName("name"), source),
				Alias:  nodeText(child.ChildByFieldName("alias"), source),
				Kind:   EdgeFrom,
				Line:   nodeLine(child),
			})
		case "wildcard_import":
			edges = append(edges, ImportEdge{
				File:   path,
				Module: module,
				Name:   "*",
				Kind:   EdgeFrom,
				Line:   nodeLine(child),
			})
		}
	}
	return edges
}

// pythonDecorators returns the decorator names attached to a definition.
// Decorated definitions are wrapped in a decorated_definition parent node.
func pythonDecorators(node *sitter.Node, source []byte) []string {
	parent := node.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}

	var decorators []string
	for i := uint32(0); i < parent.NamedChildCount(); i++ {
		child := parent.NamedChild(int(i))
		if child == nil || child.Type() != "decorator" {
			continue
		}
		decorators = append(decorators, decoratorName(nodeText(child, source)))
	}
	return decorators
}

// decoratorName strips the "@" prefix and any call arguments:
// "@app.route('/x')" -> "app.route"
func decoratorName(text string) string {
	text = strings.TrimPrefix(strings.TrimSpace(text), "@")
	if idx := strings.IndexByte(text, '('); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
