package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// This binary is a code-generation tool.
//
// It scans the Go files of one package for struct fields carrying a `remote`
// tag and writes a function declaring those fields on a *remote.Extension.
// The generated file lives in the scanned package, so its accessor closures
// reach unexported fields that reflection cannot set.
//
// Key behaviors:
// - Skips _test.go files, *.gen.go files and the output file itself
// - Validates every tag with remote.ParseTag; one bad tag fails the run
// - Imports only the packages referenced by tagged field types
// - Formats the output with go/format and writes it atomically

const defaultFuncName = "DeclareRemoteResources"

// templateData is the input passed to the Go template.
type templateData struct {
	Package  string
	Func     string
	Imports  []ImportSpec
	Structs  []Struct
	Resource string
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("remotegen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	outPath := flags.String("out", "", "output .gen.go file path")
	funcName := flags.String("func", defaultFuncName, "name of the generated function")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*outPath) == "" || flags.NArg() > 0 {
		_, _ = fmt.Fprintln(stderr, "usage: remotegen -out <file.gen.go> [-func Name]")
		return 2
	}
	if !token.IsIdentifier(*funcName) {
		_, _ = fmt.Fprintf(stderr, "remotegen: -func %q is not a Go identifier\n", *funcName)
		return 2
	}

	generatedFilePath := filepath.Clean(*outPath)
	if err := generate(generatedFilePath, *funcName); err != nil {
		_, _ = fmt.Fprintf(stderr, "remotegen: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// generate scans the directory of outPath and writes the declarations.
func generate(outPath, funcName string) error {
	pkg, err := scanPackage(filepath.Dir(outPath), filepath.Base(outPath))
	if err != nil {
		return err
	}

	src, err := render(pkg, funcName)
	if err != nil {
		return err
	}
	return writeFileAtomic(outPath, src, 0o644)
}

// render executes the template and gofmts the result.
func render(pkg *Package, funcName string) ([]byte, error) {
	data := templateData{
		Package:  pkg.Name,
		Func:     funcName,
		Imports:  pkg.Imports,
		Structs:  pkg.Structs,
		Resource: remoteImportPath,
	}

	var out bytes.Buffer
	if err := genTemplate.Execute(&out, data); err != nil {
		return nil, err
	}
	src, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return src, nil
}

// genTemplate is the Go source template used to generate the declarations.
var genTemplate = template.Must(
	template.New("remotegen").Parse(`// Code generated by remotegen; DO NOT EDIT.

package {{.Package}}

import (
	"{{.Resource}}"
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)

// {{.Func}} declares the remote resource fields of every tagged type in
// package {{.Package}} on x.
func {{.Func}}(x *remote.Extension) error {
{{- range $s := .Structs}}
	if err := remote.Declare(x,
	{{- range .Fields}}
		remote.Bind({{printf "%q" .Name}}, func(v *{{$s.Name}}) *{{.Type}} { return &v.{{.Name}} }, remote.Resource{
			ExternalContextLookup: {{printf "%q" .Resource.ExternalContextLookup}},
			Lookup:                {{printf "%q" .Resource.Lookup}},
			Cache:                 {{.Resource.Cache}},
			ValidateOnDeployment:  {{.Resource.ValidateOnDeployment}},
		}),
	{{- end}}
	); err != nil {
		return err
	}
{{- end}}
	return nil
}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over targetPath, so readers never observe a partial write.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}
