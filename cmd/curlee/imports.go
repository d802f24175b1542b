package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/curlee-lang/curlee/ast"
	"github.com/curlee-lang/curlee/diag"
	"github.com/curlee-lang/curlee/lexer"
	"github.com/curlee-lang/curlee/parser"
	"github.com/curlee-lang/curlee/resolve"
	"github.com/curlee-lang/curlee/source"
)

// checkImportGraph walks the transitive import chain rooted at each of
// entryPath's top-level imports, actually opening and parsing every
// imported .curlee file from disk, per
// original_source/tests/cli_check_import_depth_tests.cpp: a dotted
// import path resolves to a sibling file (dots become path separators)
// relative to the importing file, depth is counted per file hop rather
// than per import statement, and any imported module that defines
// 'main' is rejected. resolve.Resolve cannot do this itself — it never
// touches the filesystem — so the real traversal lives here, in the
// one layer that already owns file I/O.
//
// Every returned diagnostic carries the span of the entry file's own
// import statement that started the offending chain, since diag.Render
// only knows how to place a span against the single file it's given;
// spans from a transitively imported file would be meaningless against
// the entry file's contents.
func checkImportGraph(entryPath string, imports []ast.Import) []diag.Diagnostic {
	dir := filepath.Dir(entryPath)
	var diags []diag.Diagnostic
	for _, imp := range imports {
		diags = append(diags, walkImportChain(dir, imp.Path, imp.Span, 1, map[string]bool{})...)
	}
	return diags
}

func importFilePath(dir, path string) string {
	rel := strings.ReplaceAll(path, ".", string(filepath.Separator))
	return filepath.Join(dir, rel+".curlee")
}

// walkImportChain loads the single module named path (depth hops from
// the entry file) and recurses into whatever it imports in turn.
func walkImportChain(dir, path string, rootSpan source.Span, depth int, visited map[string]bool) []diag.Diagnostic {
	if depth > resolve.MaxImportDepth {
		return []diag.Diagnostic{diag.New("import graph too deep", rootSpan)}
	}

	modPath := importFilePath(dir, path)
	if visited[modPath] {
		return []diag.Diagnostic{diag.New(fmt.Sprintf("import cycle at '%s'", path), rootSpan)}
	}
	visited[modPath] = true

	data, err := os.ReadFile(modPath)
	if err != nil {
		return []diag.Diagnostic{diag.New(fmt.Sprintf("cannot find imported module '%s'", path), rootSpan)}
	}

	tokens, lexDiag := lexer.Scan(data)
	if lexDiag != nil {
		return nil
	}
	modProg, pdiags := parser.Parse(tokens)
	if hasError(pdiags) {
		return nil
	}

	var diags []diag.Diagnostic
	for _, fn := range modProg.Functions {
		if fn.Name == "main" {
			diags = append(diags, diag.New("imported modules must not define 'main'", rootSpan))
			break
		}
	}
	for _, nested := range modProg.Imports {
		diags = append(diags, walkImportChain(dir, nested.Path, rootSpan, depth+1, visited)...)
	}
	return diags
}
