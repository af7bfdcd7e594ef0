// Package noosexit defines an analyzer that forbids calling os.Exit from
// the main function of package main. A direct exit skips deferred cleanup
// such as flushing logs and closing the storage, so the entrypoint must
// return instead.
package noosexit

import (
	"go/ast"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports direct os.Exit calls inside main.main.
var Analyzer = &analysis.Analyzer{
	Name: "noosexit",
	Doc:  "prohibits direct use of os.Exit in main.main",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		// generated files in the build cache are not ours to lint
		if inGoBuildCache(pass.Fset.File(file.Pos()).Name()) {
			continue
		}

		mainFn := findMainFunc(file)
		if mainFn == nil {
			continue
		}

		ast.Inspect(mainFn.Body, func(n ast.Node) bool {
			if isOsExitCall(n) {
				pass.Reportf(n.Pos(), "avoid using os.Exit in main.main")
			}
			return true
		})
	}

	return nil, nil
}

func findMainFunc(file *ast.File) *ast.FuncDecl {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Recv == nil && fn.Name.Name == "main" {
			return fn
		}
	}

	return nil
}

func isOsExitCall(n ast.Node) bool {
	call, ok := n.(*ast.CallExpr)
	if !ok {
		return false
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Exit" {
		return false
	}

	pkg, ok := sel.X.(*ast.Ident)

	return ok && pkg.Name == "os"
}

func inGoBuildCache(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/go-build/")
}
