package ast

import (
	"tuff/internal/source"
)

// File is the root of one resolver tree (a Program node).
type File struct {
	Pos source.Pos
	// Origin is the program path recorded by the resolver.
	Origin source.StringID
	Items  []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(pos source.Pos, origin source.StringID) FileID {
	return FileID(f.Arena.Allocate(File{
		Pos:    pos,
		Origin: origin,
		Items:  make([]ItemID, 0),
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
