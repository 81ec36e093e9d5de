package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"tuff/internal/ast"
	"tuff/internal/source"
	"tuff/internal/types"
)

type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(children ...*treeNode) *treeNode {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

func leaf(format string, args ...any) *treeNode {
	return &treeNode{label: fmt.Sprintf(format, args...)}
}

// FormatTree prints the decoded tree of fileID as an indented outline.
func FormatTree(w io.Writer, b *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	file := b.Files.Get(fileID)
	if file == nil {
		return fmt.Errorf("file %d not found", fileID)
	}
	header := "Program"
	if file.Origin != source.NoStringID {
		header += " " + b.Name(file.Origin)
	} else if fs != nil {
		header += " " + fs.DisplayPath(file.Pos.File, PathModeAuto.String())
	}
	t := &treeBuilder{b: b}
	root := &treeNode{label: header}
	for _, id := range file.Items {
		root.add(t.item(id))
	}
	fmt.Fprintln(w, root.label)
	writeChildren(w, root, "")
	return nil
}

func writeChildren(w io.Writer, n *treeNode, prefix string) {
	for i, c := range n.children {
		branch, next := "├─ ", "│  "
		if i == len(n.children)-1 {
			branch, next = "└─ ", "   "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, c.label)
		writeChildren(w, c, prefix+next)
	}
}

type treeBuilder struct {
	b *ast.Builder
}

func at(pos source.Pos) string {
	return fmt.Sprintf("(%d:%d)", pos.Line, pos.Col)
}

func (t *treeBuilder) typ(id ast.TypeID) string {
	if !id.IsValid() {
		return "_"
	}
	return types.FromAST(t.b, id).String()
}

func (t *treeBuilder) names(ids []source.StringID) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.b.Name(id))
	}
	return strings.Join(out, ", ")
}

func (t *treeBuilder) item(id ast.ItemID) *treeNode {
	item := t.b.Items.Get(id)
	if item == nil {
		return leaf("<nil item>")
	}
	switch item.Kind {
	case ast.ItemFn, ast.ItemExternFn:
		fn, _ := t.b.Items.Fn(id)
		n := leaf("%s %s %s", item.Kind, t.b.Name(fn.Name), at(item.Pos))
		if len(fn.Generics) > 0 {
			n.add(leaf("generics: %s", t.names(fn.Generics)))
		}
		for _, p := range fn.Params {
			n.add(leaf("param %s: %s", t.b.Name(p.Name), t.typ(p.Type)))
		}
		if fn.Result.IsValid() {
			n.add(leaf("returns: %s", t.typ(fn.Result)))
		}
		if fn.Body.IsValid() {
			n.add(t.expr(fn.Body))
		}
		return n
	case ast.ItemStruct:
		s, _ := t.b.Items.Struct(id)
		n := leaf("%s %s%s %s", item.Kind, copyMark(s.Copy), t.b.Name(s.Name), at(item.Pos))
		for _, f := range s.Fields {
			n.add(leaf("field %s: %s", t.b.Name(f.Name), t.typ(f.Type)))
		}
		return n
	case ast.ItemEnum:
		e, _ := t.b.Items.Enum(id)
		return leaf("%s %s%s { %s } %s", item.Kind, copyMark(e.Copy), t.b.Name(e.Name), t.names(e.Variants), at(item.Pos))
	case ast.ItemTypeAlias:
		a, _ := t.b.Items.TypeAlias(id)
		label := fmt.Sprintf("%s %s%s = %s", item.Kind, copyMark(a.Copy), t.b.Name(a.Name), t.typ(a.Target))
		if a.Destructor != source.NoStringID {
			label += " then " + t.b.Name(a.Destructor)
		}
		return leaf("%s %s", label, at(item.Pos))
	case ast.ItemExternType:
		e, _ := t.b.Items.ExternType(id)
		return leaf("%s %s %s", item.Kind, t.b.Name(e.Name), at(item.Pos))
	case ast.ItemLet:
		l, _ := t.b.Items.Let(id)
		return t.stmt(l.Stmt)
	case ast.ItemExternLet:
		l, _ := t.b.Items.Let(id)
		return leaf("%s %s: %s %s", item.Kind, t.b.Name(l.Name), t.typ(l.Type), at(item.Pos))
	}
	return leaf("%s %s", item.Kind, at(item.Pos))
}

func copyMark(isCopy bool) string {
	if isCopy {
		return "copy "
	}
	return ""
}

func (t *treeBuilder) stmt(id ast.StmtID) *treeNode {
	if !id.IsValid() {
		return nil
	}
	s := t.b.Stmts.Get(id)
	if s == nil {
		return leaf("<nil stmt>")
	}
	n := leaf("%s %s", s.Kind, at(s.Pos))
	switch s.Kind {
	case ast.StmtLet:
		data, _ := t.b.Stmts.Let(id)
		n.label = fmt.Sprintf("%s %s: %s %s", s.Kind, t.b.Name(data.Name), t.typ(data.Type), at(s.Pos))
		if data.Value.IsValid() {
			n.add(t.expr(data.Value))
		}
	case ast.StmtAssign:
		data, _ := t.b.Stmts.Assign(id)
		n.add(t.expr(data.Target), t.expr(data.Value))
	case ast.StmtExpr:
		data, _ := t.b.Stmts.Expr(id)
		n.add(t.expr(data.Expr))
	case ast.StmtReturn:
		data, _ := t.b.Stmts.Return(id)
		if data.Value.IsValid() {
			n.add(t.expr(data.Value))
		}
	case ast.StmtIf:
		data, _ := t.b.Stmts.If(id)
		n.add(t.expr(data.Cond), t.stmt(data.Then), t.stmt(data.Else))
	case ast.StmtFor:
		data, _ := t.b.Stmts.For(id)
		n.label = fmt.Sprintf("%s %s %s", s.Kind, t.b.Name(data.Iterator), at(s.Pos))
		n.add(t.expr(data.Start), t.expr(data.End), t.stmt(data.Body))
	case ast.StmtWhile:
		data, _ := t.b.Stmts.While(id)
		n.add(t.expr(data.Cond), t.stmt(data.Body))
	case ast.StmtLoop:
		data, _ := t.b.Stmts.Loop(id)
		n.add(t.stmt(data.Body))
	case ast.StmtDrop:
		data, _ := t.b.Stmts.Drop(id)
		n.add(t.expr(data.Target))
	}
	return n
}

func (t *treeBuilder) expr(id ast.ExprID) *treeNode {
	if !id.IsValid() {
		return nil
	}
	e := t.b.Exprs.Get(id)
	if e == nil {
		return leaf("<nil expr>")
	}
	n := leaf("%s %s", e.Kind, at(e.Pos))
	detail := func(d string) {
		n.label = fmt.Sprintf("%s %s %s", e.Kind, d, at(e.Pos))
	}
	switch e.Kind {
	case ast.ExprLit:
		lit, _ := t.b.Exprs.Literal(id)
		detail(t.literal(lit))
	case ast.ExprIdent:
		data, _ := t.b.Exprs.Ident(id)
		detail(t.b.Name(data.Name))
	case ast.ExprBinary:
		data, _ := t.b.Exprs.Binary(id)
		detail(data.Op.String())
		n.add(t.expr(data.Left), t.expr(data.Right))
	case ast.ExprUnary:
		data, _ := t.b.Exprs.Unary(id)
		detail(data.Op.String())
		n.add(t.expr(data.Operand))
	case ast.ExprCall:
		data, _ := t.b.Exprs.Call(id)
		n.add(t.expr(data.Callee))
		for _, a := range data.Args {
			n.add(t.expr(a))
		}
	case ast.ExprMember:
		data, _ := t.b.Exprs.Member(id)
		detail("." + t.b.Name(data.Field))
		n.add(t.expr(data.Target))
	case ast.ExprIndex:
		data, _ := t.b.Exprs.Index(id)
		n.add(t.expr(data.Target), t.expr(data.Index))
	case ast.ExprStruct:
		data, _ := t.b.Exprs.Struct(id)
		detail(t.b.Name(data.Name))
		for _, f := range data.Fields {
			n.add(leaf("%s:", t.b.Name(f.Name)).add(t.expr(f.Value)))
		}
	case ast.ExprIf:
		data, _ := t.b.Exprs.If(id)
		n.add(t.expr(data.Cond), t.expr(data.Then), t.expr(data.Else))
	case ast.ExprMatch:
		data, _ := t.b.Exprs.Match(id)
		n.add(t.expr(data.Subject))
		for _, arm := range data.Arms {
			n.add(leaf("case %s", t.pattern(arm.Pattern)).add(t.expr(arm.Body)))
		}
	case ast.ExprIs:
		data, _ := t.b.Exprs.Is(id)
		detail(t.pattern(data.Pattern))
		n.add(t.expr(data.Value))
	case ast.ExprUnwrap:
		data, _ := t.b.Exprs.Unwrap(id)
		n.add(t.expr(data.Value))
	case ast.ExprBlock:
		data, _ := t.b.Exprs.Block(id)
		for _, s := range data.Stmts {
			n.add(t.stmt(s))
		}
	}
	return n
}

func (t *treeBuilder) literal(lit *ast.ExprLiteralData) string {
	switch lit.Kind {
	case ast.ExprLitNumber:
		return strconv.FormatInt(lit.Int, 10) + t.b.Name(lit.Suffix)
	case ast.ExprLitBool:
		return strconv.FormatBool(lit.Bool)
	case ast.ExprLitChar:
		return strconv.QuoteRune([]rune(t.b.Name(lit.Text) + "\x00")[0])
	}
	return strconv.Quote(t.b.Name(lit.Text))
}

func (t *treeBuilder) pattern(id ast.PatternID) string {
	p := t.b.Patterns.Get(id)
	if p == nil {
		return "_"
	}
	switch p.Kind {
	case ast.PatternName:
		return t.b.Name(p.Name)
	case ast.PatternStruct:
		return fmt.Sprintf("%s { %s }", t.b.Name(p.Name), t.names(p.Fields))
	case ast.PatternLiteral:
		if lit, ok := t.b.Exprs.Literal(p.Value); ok {
			return t.literal(lit)
		}
	}
	return "_"
}
