package driver

import (
	"fmt"

	"tuff/internal/ast"
	"tuff/internal/astjson"
	"tuff/internal/source"
	"tuff/internal/symbols"
)

// Decoded is a unit turned into a tree and its declaration tables, without
// running the checkers.
type Decoded struct {
	FileSet *source.FileSet
	Unit    source.FileID
	Builder *ast.Builder
	File    ast.FileID
	Tables  *symbols.Table
}

// DecodeUnit loads path and decodes it. A malformed tree comes back as a
// *diag.Diagnostic error together with the FileSet needed to render it.
func DecodeUnit(path string) (*Decoded, error) {
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	dec := &Decoded{
		FileSet: fileSet,
		Unit:    id,
		Builder: ast.NewBuilder(ast.Hints{}, source.NewInterner()),
	}
	file, d := astjson.Decode(dec.Builder, id, fileSet.Get(id).Content)
	if d != nil {
		return dec, d
	}
	dec.File = file
	if f := dec.Builder.Files.Get(file); f != nil && f.Origin != source.NoStringID {
		fileSet.SetOrigin(id, dec.Builder.Name(f.Origin))
	}
	dec.Tables = symbols.Build(dec.Builder, file)
	return dec, nil
}
