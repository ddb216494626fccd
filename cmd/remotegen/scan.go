package main

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/sghaida/remoteresource/remote"
)

const remoteImportPath = "github.com/sghaida/remoteresource/remote"

var errNoGoFiles = errors.New("no Go files")

// ImportSpec models one Go import: optional alias and full import path.
type ImportSpec struct {
	Alias string
	Path  string
}

// Field is one tagged struct field.
type Field struct {
	Name     string
	Type     string
	Resource remote.Resource
}

// Struct is a named struct type with at least one tagged field.
type Struct struct {
	Name   string
	Fields []Field
}

// Package is the scan result for one directory.
type Package struct {
	Name    string
	Structs []Struct
	Imports []ImportSpec
}

// shouldScan reports whether fileName takes part in the scan.
func shouldScan(fileName, skip string) bool {
	return strings.HasSuffix(fileName, ".go") &&
		!strings.HasSuffix(fileName, "_test.go") &&
		!strings.HasSuffix(fileName, ".gen.go") &&
		fileName != skip
}

// scanPackage parses every eligible file of dir and collects tagged structs
// in file then declaration order.
func scanPackage(dir, skip string) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fileSet := token.NewFileSet()
	pkg := &Package{}
	imports := make(map[string]ImportSpec) // ident -> import

	for _, entry := range entries {
		if entry.IsDir() || !shouldScan(entry.Name(), skip) {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		file, err := parser.ParseFile(fileSet, filePath, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if pkg.Name != file.Name.Name {
			return nil, fmt.Errorf("%s: package %s, expected %s", filePath, file.Name.Name, pkg.Name)
		}

		structs, used, err := scanFile(fileSet, file)
		if err != nil {
			return nil, err
		}
		pkg.Structs = append(pkg.Structs, structs...)

		for ident, spec := range used {
			if prev, ok := imports[ident]; ok && prev.Path != spec.Path {
				return nil, fmt.Errorf("%s: package name %s refers to both %q and %q", filePath, ident, prev.Path, spec.Path)
			}
			imports[ident] = spec
		}
	}

	if pkg.Name == "" {
		return nil, fmt.Errorf("%w in %s", errNoGoFiles, dir)
	}

	if spec, ok := imports["remote"]; ok && spec.Path != remoteImportPath {
		return nil, fmt.Errorf("package name remote refers to %q and clashes with %q", spec.Path, remoteImportPath)
	}
	delete(imports, "remote")

	pkg.Imports = make([]ImportSpec, 0, len(imports))
	for _, spec := range imports {
		pkg.Imports = append(pkg.Imports, spec)
	}
	sort.Slice(pkg.Imports, func(i, j int) bool { return pkg.Imports[i].Path < pkg.Imports[j].Path })
	return pkg, nil
}

// scanFile returns the tagged structs of file and the imports their field
// types reference, keyed by package identifier.
func scanFile(fileSet *token.FileSet, file *ast.File) ([]Struct, map[string]ImportSpec, error) {
	fileImports := readImports(file)
	used := make(map[string]ImportSpec)
	var structs []Struct

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}

			s := Struct{Name: typeSpec.Name.Name}
			for _, field := range structType.Fields.List {
				value, ok := remoteTag(field)
				if !ok {
					continue
				}
				pos := fileSet.Position(field.Pos())
				if typeSpec.TypeParams != nil {
					return nil, nil, fmt.Errorf("%s: generic type %s cannot declare remote resources", pos, s.Name)
				}
				if len(field.Names) == 0 {
					return nil, nil, fmt.Errorf("%s: embedded field in %s cannot be a remote resource", pos, s.Name)
				}

				res, err := remote.ParseTag(value)
				if err != nil {
					return nil, nil, fmt.Errorf("%s: %s: %w", pos, s.Name, err)
				}
				if err := collectImports(field.Type, fileImports, used); err != nil {
					return nil, nil, fmt.Errorf("%s: %s: %w", pos, s.Name, err)
				}

				typeText := types.ExprString(field.Type)
				for _, name := range field.Names {
					if name.Name == "_" {
						return nil, nil, fmt.Errorf("%s: blank field in %s cannot be a remote resource", pos, s.Name)
					}
					s.Fields = append(s.Fields, Field{Name: name.Name, Type: typeText, Resource: res})
				}
			}
			if len(s.Fields) > 0 {
				structs = append(structs, s)
			}
		}
	}
	return structs, used, nil
}

// remoteTag returns the `remote` tag value of field, if any.
func remoteTag(field *ast.Field) (string, bool) {
	if field.Tag == nil {
		return "", false
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return "", false
	}
	return reflect.StructTag(raw).Lookup(remote.TagName)
}

// readImports maps the package identifiers visible in file to their imports.
func readImports(file *ast.File) map[string]ImportSpec {
	imports := make(map[string]ImportSpec, len(file.Imports))
	for _, importDecl := range file.Imports {
		importPath, err := strconv.Unquote(importDecl.Path.Value)
		if err != nil {
			continue
		}
		spec := ImportSpec{Path: importPath}
		ident := importDefaultIdent(importPath)
		if importDecl.Name != nil {
			if importDecl.Name.Name == "_" || importDecl.Name.Name == "." {
				continue
			}
			spec.Alias = importDecl.Name.Name
			ident = spec.Alias
		}
		imports[ident] = spec
	}
	return imports
}

// collectImports records every import that expr references through a
// qualified identifier.
func collectImports(expr ast.Expr, fileImports, used map[string]ImportSpec) error {
	var missing string
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		spec, ok := fileImports[ident.Name]
		if !ok {
			missing = ident.Name
			return false
		}
		used[ident.Name] = spec
		return false
	})
	if missing != "" {
		return fmt.Errorf("no import for package %s", missing)
	}
	return nil
}

// importDefaultIdent guesses the package name of an unaliased import:
// "gopkg.in/yaml.v3" is yaml, "github.com/go-chi/chi/v5" is chi.
func importDefaultIdent(importPath string) string {
	// Import paths always use forward slashes, even on Windows.
	importPath = strings.TrimSpace(importPath)
	base := path.Base(importPath)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.TrimPrefix(base, "go-")
}

func isMajorVersion(elem string) bool {
	if len(elem) < 2 || elem[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(elem[1:])
	return err == nil
}
