package parser

import (
	"context"
	"testing"
)

func TestJavaScriptExtractClass(t *testing.T) {
	source := []byte(`class Widget extends Component {
  render() {
    return null;
  }

  async load() {
    return fetch("/data");
  }
}
`)

	syntax, err := NewJavaScript().Extract(context.Background(), "widget.js", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	cls := findSymbol(t, syntax.Symbols, "Widget")
	if cls.Kind != KindClass {
		t.Errorf("Widget kind = %s, want class", cls.Kind)
	}
	if len(cls.Bases) != 1 || cls.Bases[0] != "Component" {
		t.Errorf("Widget bases = %v, want [Component]", cls.Bases)
	}
	if len(cls.Members) != 2 || cls.Members[0] != "render" || cls.Members[1] != "load" {
		t.Errorf("Widget members = %v, want [render load]", cls.Members)
	}

	load := findSymbol(t, syntax.Symbols, "load")
	if load.Kind != KindAsyncFunction {
		t.Errorf("load kind = %s, want async_function", load.Kind)
	}
}

func TestJavaScriptExtractFunctions(t *testing.T) {
	source := []byte(`function plain(a, b) {
  return a + b;
}

async function fetchAll(urls) {
  return Promise.all(urls);
}
`)

	syntax, err := NewJavaScript().Extract(context.Background(), "fns.js", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	plain := findSymbol(t, syntax.Symbols, "plain")
	if plain.Kind != KindFunction {
		t.Errorf("plain kind = %s, want function", plain.Kind)
	}
	if len(plain.Params) != 2 || plain.Params[0] != "a" || plain.Params[1] != "b" {
		t.Errorf("plain params = %v, want [a b]", plain.Params)
	}

	fetchAll := findSymbol(t, syntax.Symbols, "fetchAll")
	if fetchAll.Kind != KindAsyncFunction {
		t.Errorf("fetchAll kind = %s, want async_function", fetchAll.Kind)
	}
}

func TestJavaScriptExtractImports(t *testing.T) {
	source := []byte(`import Foo from "./foo";
import { bar, baz as qux } from "./bar";
import * as ns from "./ns";
import "./side-effect";
`)

	syntax, err := NewJavaScript().Extract(context.Background(), "imports.js", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []ImportEdge{
		{File: "imports.js", Module: "./foo", Name: "Foo", Kind: EdgeFrom, Line: 1},
		{File: "imports.js", Module: "./bar", Name: "bar", Kind: EdgeFrom, Line: 2},
		{File: "imports.js", Module: "./bar", Name: "baz", Alias: "qux", Kind: EdgeFrom, Line: 2},
		{File: "imports.js", Module: "./ns", Alias: "ns", Kind: EdgeDirect, Line: 3},
		{File: "imports.js", Module: "./side-effect", Kind: EdgeDirect, Line: 4},
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

func TestTypeScriptExtract(t *testing.T) {
	source := []byte(`import { Injectable } from "./di";

class Service {
  run(task) {
    return task;
  }
}

async function boot(app) {
  return app;
}
`)

	syntax, err := NewTypeScript().Extract(context.Background(), "service.ts", source)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	svc := findSymbol(t, syntax.Symbols, "Service")
	if svc.Kind != KindClass {
		t.Errorf("Service kind = %s, want class", svc.Kind)
	}
	if len(svc.Members) != 1 || svc.Members[0] != "run" {
		t.Errorf("Service members = %v, want [run]", svc.Members)
	}

	boot := findSymbol(t, syntax.Symbols, "boot")
	if boot.Kind != KindAsyncFunction {
		t.Errorf("boot kind = %s, want async_function", boot.Kind)
	}

	if len(syntax.Imports) != 1 || syntax.Imports[0].Name != "Injectable" {
		t.Errorf("imports = %v, want single Injectable edge", syntax.Imports)
	}
}
