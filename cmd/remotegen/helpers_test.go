package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// billingSource declares one exported, one unexported and one untagged field.
const billingSource = `package billing

import (
	"net/url"

	pg "example.com/db/postgres"
	"gopkg.in/yaml.v3"
)

type Gateway interface{ Charge(cents int) error }

type Billing struct {
	Gateway Gateway ` + "`" + `remote:"externalContextLookup=externalCtx,lookup=payments"` + "`" + `
	db      *pg.Pool ` + "`" + `remote:"externalContextLookup=externalCtx,lookup=db,cache=false"` + "`" + `
	base    url.URL
	notes   yaml.Node
}

type Untagged struct{ Name string }
`

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// accessorResults parses a generated file and maps every remote.Bind field
// name to the result type of its accessor, which must be a pointer to the
// field's type.
func accessorResults(t *testing.T, p string) map[string]string {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), p, nil, parser.AllErrors)
	require.NoError(t, err, "generated file must parse")

	results := make(map[string]string)
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || types.ExprString(call.Fun) != "remote.Bind" {
			return true
		}
		require.Len(t, call.Args, 3)
		name, ok := call.Args[0].(*ast.BasicLit)
		require.True(t, ok)
		accessor, ok := call.Args[1].(*ast.FuncLit)
		require.True(t, ok)
		require.Len(t, accessor.Type.Results.List, 1)
		results[name.Value[1:len(name.Value)-1]] = types.ExprString(accessor.Type.Results.List[0].Type)
		return false
	})
	return results
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// restoreWriteSeams puts the real file seams back when t ends.
func restoreWriteSeams(t *testing.T) {
	t.Helper()
	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}
