package parser

import (
	"context"
	"testing"
)

func findSymbol(t *testing.T, syms []Symbol, name string) Symbol {
	t.Helper()
	for _, s := range syms {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("symbol %q not found in %v", name, syms)
	return Symbol{}
}

func TestPythonExtractClass(t *testing.T) {
	source := []byte(`class Foo(Base, mixins.Extra):
    def bar(self, x, y=1):
        return x

    async def baz(self):
        pass
`)

	syntax, err := NewPython().Extract(context.Background(), "a.py", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	cls := findSymbol(t, syntax.Symbols, "Foo")
	if cls.Kind != KindClass {
		t.Errorf("Foo kind = %s, want class", cls.Kind)
	}
	if cls.Line != 1 {
		t.Errorf("Foo line = %d, want 1", cls.Line)
	}
	if len(cls.Bases) != 2 || cls.Bases[0] != "Base" || cls.Bases[1] != "mixins.Extra" {
		t.Errorf("Foo bases = %v, want [Base mixins.Extra]", cls.Bases)
	}
	if len(cls.Members) != 2 || cls.Members[0] != "bar" || cls.Members[1] != "baz" {
		t.Errorf("Foo members = %v, want [bar baz]", cls.Members)
	}

	bar := findSymbol(t, syntax.Symbols, "bar")
	if bar.Kind != KindFunction {
		t.Errorf("bar kind = %s, want function", bar.Kind)
	}
	if len(bar.Params) != 3 || bar.Params[0] != "self" || bar.Params[1] != "x" || bar.Params[2] != "y" {
		t.Errorf("bar params = %v, want [self x y]", bar.Params)
	}

	baz := findSymbol(t, syntax.Symbols, "baz")
	if baz.Kind != KindAsyncFunction {
		t.Errorf("baz kind = %s, want async_function", baz.Kind)
	}
}

func TestPythonExtractDecorators(t *testing.T) {
	source := []byte(`@app.route("/things")
def list_things():
    pass

@staticmethod
@cached
def helper():
    pass
`)

	syntax, err := NewPython().Extract(context.Background(), "views.py", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	listThings := findSymbol(t, syntax.Symbols, "list_things")
	if len(listThings.Decorators) != 1 || listThings.Decorators[0] != "app.route" {
		t.Errorf("list_things decorators = %v, want [app.route]", listThings.Decorators)
	}

	helper := findSymbol(t, syntax.Symbols, "helper")
	if len(helper.Decorators) != 2 || helper.Decorators[0] != "staticmethod" || helper.Decorators[1] != "cached" {
		t.Errorf("helper decorators = %v, want [staticmethod cached]", helper.Decorators)
	}
}

func TestPythonExtractImports(t *testing.T) {
	source := []byte(`import os
import numpy as np
from pathlib import Path
from models import Foo, Bar as Baz
from utils import *
`)

	syntax, err := NewPython().Extract(context.Background(), "b.py", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []ImportEdge{
		{File: "b.py", Module: "os", Kind: EdgeDirect, Line: 1},
		{File: "b.py", Module: "numpy", Alias: "np", Kind: EdgeDirect, Line: 2},
		{File: "b.py", Module: "pathlib", Name: "Path", Kind: EdgeFrom, Line: 3},
		{File: "b.py", Module: "models", Name: "Foo", Kind: EdgeFrom, Line: 4},
		{File: "b.py", Module: "models", Name: "Bar", Alias: "Baz", Kind: EdgeFrom, Line: 4},
		{File: "b.py", Module: "utils", Name: "*", Kind: EdgeFrom, Line: 5},
	}

	if len(syntax.Imports) != len(want) {
		t.Fatalf("imports = %v, want %d edges", syntax.Imports, len(want))
	}
	for i, w := range want {
		if syntax.Imports[i] != w {
			t.Errorf("imports[%d] = %+v, want %+v", i, syntax.Imports[i], w)
		}
	}
}

func TestPythonExtractDeterminism(t *testing.T) {
	source := []byte(`class A:
    def m(self):
        pass

def standalone(a, b):
    return a + b
`)

	p := NewPython()
	first, err := p.Extract(context.Background(), "c.py", source)
	if err != nil {
		t.Fatalf("first Extract() error = %v", err)
	}
	second, err := p.Extract(context.Background(), "c.py", source)
	if err != nil {
		t.Fatalf("second Extract() error = %v", err)
	}

	if len(first.Symbols) != len(second.Symbols) {
		t.Fatalf("symbol counts differ: %d vs %d", len(first.Symbols), len(second.Symbols))
	}
	for i := range first.Symbols {
		if first.Symbols[i].Name != second.Symbols[i].Name || first.Symbols[i].Line != second.Symbols[i].Line {
			t.Errorf("symbols[%d] differ: %+v vs %+v", i, first.Symbols[i], second.Symbols[i])
		}
	}
}

func TestPythonExtractSyntaxError(t *testing.T) {
	source := []byte("class (:\n  ???\n")

	_, err := NewPython().Extract(context.Background(), "bad.py", source)
	if err == nil {
		t.Fatal("Extract() expected error for invalid syntax, got nil")
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		path     string
		language string
		ok       bool
	}{
		{"pkg/mod.py", "python", true},
		{"src/app.js", "javascript", true},
		{"src/app.jsx", "javascript", true},
		{"src/app.ts", "typescript", true},
		{"src/app.tsx", "typescript", true},
		{"README.md", "", false},
		{"bin/tool", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, ok := r.ForPath(tt.path)
			if ok != tt.ok {
				t.Fatalf("ForPath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && p.Language() != tt.language {
				t.Errorf("language = %s, want %s", p.Language(), tt.language)
			}
		})
	}
}
