package core

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// unexported variables.
var (
	docLock   sync.Mutex                                //nolint:gochecknoglobals // doc cache
	docFset   = token.NewFileSet()                      //nolint:gochecknoglobals // doc cache
	docFiles  = make(map[string]*ast.File)              //nolint:gochecknoglobals // doc cache
	docByType = make(map[reflect.Type]map[string]string) //nolint:gochecknoglobals // doc cache
)

func clearDocCache() {
	docLock.Lock()
	defer docLock.Unlock()

	clear(docFiles)
	clear(docByType)

	docFset = token.NewFileSet()
}

// fieldDocs extracts doc comments for a struct type's fields, best-effort:
// the declaring source file is located through one of the type's methods,
// so a methodless type in a file never seen before yields nothing.
func fieldDocs(t reflect.Type) map[string]string {
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return nil
	}

	docLock.Lock()
	defer docLock.Unlock()

	if cached, ok := docByType[t]; ok {
		return cached
	}

	docs := lookupFieldDocs(t)
	docByType[t] = docs

	return docs
}

func lookupFieldDocs(t reflect.Type) map[string]string {
	if file := anchorFile(t); file != "" {
		if docs := docsFromFile(file, t.Name()); docs != nil {
			return docs
		}

		if docs := docsFromDir(filepath.Dir(file), t.Name()); docs != nil {
			return docs
		}
	}

	// No anchor: the type may still be declared in a file some other type
	// already led us to parse.
	for _, f := range docFiles {
		if docs := docsFromAST(f, t.Name()); docs != nil {
			return docs
		}
	}

	return nil
}

// anchorFile returns a source file the type is likely declared in, found
// through any of its methods.
func anchorFile(t reflect.Type) string {
	ptr := reflect.PointerTo(t)

	for i := range ptr.NumMethod() {
		method := ptr.Method(i)

		fn := runtime.FuncForPC(method.Func.Pointer())
		if fn == nil {
			continue
		}

		file, _ := fn.FileLine(method.Func.Pointer())
		if strings.HasSuffix(file, ".go") {
			return file
		}
	}

	return ""
}

func docsFromDir(dir, typeName string) map[string]string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}

		if docs := docsFromFile(filepath.Join(dir, name), typeName); docs != nil {
			return docs
		}
	}

	return nil
}

func docsFromFile(path, typeName string) map[string]string {
	f, ok := docFiles[path]
	if !ok {
		// Without ParseComments the field docs are discarded.
		parsed, err := parser.ParseFile(docFset, path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}

		docFiles[path] = parsed
		f = parsed
	}

	return docsFromAST(f, typeName)
}

func docsFromAST(f *ast.File, typeName string) map[string]string {
	var docs map[string]string

	ast.Inspect(f, func(n ast.Node) bool {
		spec, ok := n.(*ast.TypeSpec)
		if !ok || spec.Name.Name != typeName {
			return true
		}

		structType, ok := spec.Type.(*ast.StructType)
		if !ok {
			return true
		}

		docs = fieldDocsFromStruct(structType)

		return false
	})

	return docs
}

func fieldDocsFromStruct(structType *ast.StructType) map[string]string {
	docs := map[string]string{}

	for _, field := range structType.Fields.List {
		text := strings.TrimSpace(field.Doc.Text())
		if text == "" {
			text = strings.TrimSpace(field.Comment.Text())
		}

		if text == "" {
			continue
		}

		for _, name := range field.Names {
			docs[name.Name] = text
		}
	}

	return docs
}
