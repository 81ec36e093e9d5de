package source

import "fmt"

// Pos is a resolver-provided location. Line and Col are 1-based; zero means unknown.
type Pos struct {
	File FileID
	Line uint32
	Col  uint32
}

// IsValid reports whether the position carries a line.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d:%d", p.File, p.Line, p.Col)
}

// Before orders positions within one file.
func (p Pos) Before(other Pos) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
