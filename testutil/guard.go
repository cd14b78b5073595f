// Package testutil provides the import-boundary helpers shared by the
// architecture tests spread through the tree: drivers may only see the
// domain package, and nothing outside the archive facade may touch the
// archive drivers.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// ModulePath is the import prefix of this module.
const ModulePath = "assetcore"

// ModuleLocal reports whether an import path belongs to this module.
func ModuleLocal(importPath string) bool {
	return importPath == ModulePath || strings.HasPrefix(importPath, ModulePath+"/")
}

// AssertModuleImportsAllowed scans the non-test .go files in dir and fails
// when a module-local import is not in the allowed set. Imports from outside
// the module pass unchecked; third-party policy is the go.mod review's job.
func AssertModuleImportsAllowed(t testing.TB, dir string, allowed map[string]struct{}, reason string) {
	t.Helper()
	violations, err := importViolations(dir, func(path string) bool {
		if !ModuleLocal(path) {
			return false
		}
		_, ok := allowed[path]
		return !ok
	})
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	fail(t, reason, violations)
}

// AssertNoDirectImports scans the non-test .go files in dir and fails when
// any import path satisfies the forbidden predicate.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	violations, err := importViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	fail(t, reason, violations)
}

func importViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var violations []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			if forbidden(path) {
				violations = append(violations, path+" (in "+name+")")
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

func fail(t testing.TB, reason string, violations []string) {
	t.Helper()
	if len(violations) > 0 {
		t.Fatalf("forbidden imports (%s):\n%s", reason, strings.Join(violations, "\n"))
	}
}
