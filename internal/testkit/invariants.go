package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tuff/internal/ast"
)

// CheckTreeInvariants runs a minimal set of structural invariants on a
// decoded file:
// 1) the file node exists and every item id resolves
// 2) every item position is valid and points at the file's source id
// 3) every arena node carries a valid position
func CheckTreeInvariants(b *ast.Builder, fileID ast.FileID) error {
	if b == nil {
		return fmt.Errorf("nil builder")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if !item.Pos.IsValid() {
			return fmt.Errorf("item %d (%s) has no position", it, item.Kind)
		}
		if f.Pos.IsValid() && item.Pos.File != f.Pos.File {
			return fmt.Errorf("item position file mismatch: got=%d want=%d", item.Pos.File, f.Pos.File)
		}
	}

	exprs := b.Exprs.Arena.Slice()
	for i := range exprs {
		if !exprs[i].Pos.IsValid() {
			id, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				return fmt.Errorf("expr index overflow: %w", err)
			}
			return fmt.Errorf("expr %d (%s) has no position", id, exprs[i].Kind)
		}
	}
	stmts := b.Stmts.Arena.Slice()
	for i := range stmts {
		if !stmts[i].Pos.IsValid() {
			id, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				return fmt.Errorf("stmt index overflow: %w", err)
			}
			return fmt.Errorf("stmt %d (%s) has no position", id, stmts[i].Kind)
		}
	}
	return nil
}
