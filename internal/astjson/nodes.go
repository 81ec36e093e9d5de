package astjson

import (
	"encoding/json"

	"tuff/internal/ast"
	"tuff/internal/source"
)

func (d *decoder) item(n *node) (ast.ItemID, error) {
	switch n.kind {
	case "FnDecl", "ExternFnDecl":
		return d.fnDecl(n, n.kind == "ExternFnDecl")
	case "StructDecl":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoItemID, err
		}
		data := ast.StructItem{Name: name}
		if data.Generics, err = d.names(n, "generics"); err != nil {
			return ast.NoItemID, err
		}
		if data.Copy, err = d.flag(n, "copy"); err != nil {
			return ast.NoItemID, err
		}
		fields, err := d.entries(n, "fields")
		if err != nil {
			return ast.NoItemID, err
		}
		for _, f := range fields {
			fname, err := d.name(f, "name")
			if err != nil {
				return ast.NoItemID, err
			}
			ftype, err := d.typeField(f, "type")
			if err != nil {
				return ast.NoItemID, err
			}
			data.Fields = append(data.Fields, ast.StructField{Name: fname, Type: ftype})
		}
		return d.b.Items.NewStruct(n.pos, data), nil
	case "EnumDecl":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoItemID, err
		}
		data := ast.EnumItem{Name: name}
		if data.Variants, err = d.names(n, "variants"); err != nil {
			return ast.NoItemID, err
		}
		if data.Copy, err = d.flag(n, "copy"); err != nil {
			return ast.NoItemID, err
		}
		return d.b.Items.NewEnum(n.pos, data), nil
	case "TypeAlias":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoItemID, err
		}
		data := ast.TypeAliasItem{Name: name}
		if data.Generics, err = d.names(n, "generics"); err != nil {
			return ast.NoItemID, err
		}
		if data.Target, err = d.typeField(n, "aliasedType"); err != nil {
			return ast.NoItemID, err
		}
		if data.Copy, err = d.flag(n, "copy"); err != nil {
			return ast.NoItemID, err
		}
		if destructor, ok, err := d.optString(n, "destructor"); err != nil {
			return ast.NoItemID, err
		} else if ok {
			data.Destructor = d.b.Intern(destructor)
		}
		return d.b.Items.NewTypeAlias(n.pos, data), nil
	case "ExternTypeDecl":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoItemID, err
		}
		generics, err := d.names(n, "generics")
		if err != nil {
			return ast.NoItemID, err
		}
		return d.b.Items.NewExternType(n.pos, ast.ExternTypeItem{Name: name, Generics: generics}), nil
	case "LetDecl":
		stmt, err := d.stmt(n)
		if err != nil {
			return ast.NoItemID, err
		}
		let, _ := d.b.Stmts.Let(stmt)
		return d.b.Items.NewLet(n.pos, ast.LetItem{Stmt: stmt, Name: let.Name, Type: let.Type}, false), nil
	case "ExternLetDecl":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoItemID, err
		}
		typ, err := d.optTypeField(n, "type")
		if err != nil {
			return ast.NoItemID, err
		}
		return d.b.Items.NewLet(n.pos, ast.LetItem{Name: name, Type: typ}, true), nil
	}
	return ast.NoItemID, d.fail(n, "unknown item kind")
}

func (d *decoder) fnDecl(n *node, extern bool) (ast.ItemID, error) {
	name, err := d.name(n, "name")
	if err != nil {
		return ast.NoItemID, err
	}
	fn := ast.FnItem{Name: name}
	if fn.Generics, err = d.names(n, "generics"); err != nil {
		return ast.NoItemID, err
	}
	params, err := d.entries(n, "params")
	if err != nil {
		return ast.NoItemID, err
	}
	for _, p := range params {
		pname, err := d.name(p, "name")
		if err != nil {
			return ast.NoItemID, err
		}
		ptype, err := d.optTypeField(p, "type")
		if err != nil {
			return ast.NoItemID, err
		}
		fn.Params = append(fn.Params, ast.FnParam{Name: pname, Type: ptype, Pos: p.pos})
	}
	if fn.Result, err = d.optTypeField(n, "returnType"); err != nil {
		return ast.NoItemID, err
	}
	if !extern {
		if fn.Body, err = d.exprField(n, "body"); err != nil {
			return ast.NoItemID, err
		}
	}
	return d.b.Items.NewFn(n.pos, fn, extern), nil
}

func (d *decoder) stmtField(n *node, key string) (ast.StmtID, error) {
	c, err := d.child(n, key)
	if err != nil {
		return ast.NoStmtID, err
	}
	return d.stmt(c)
}

func (d *decoder) optStmtField(n *node, key string) (ast.StmtID, error) {
	if !d.has(n, key) {
		return ast.NoStmtID, nil
	}
	return d.stmtField(n, key)
}

// stmt decodes a statement node. Expression nodes in statement position
// (usually blocks) become expression statements.
func (d *decoder) stmt(n *node) (ast.StmtID, error) {
	switch n.kind {
	case "LetDecl":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoStmtID, err
		}
		data := ast.StmtLetData{Name: name}
		if data.Type, err = d.optTypeField(n, "type"); err != nil {
			return ast.NoStmtID, err
		}
		if data.Value, err = d.optExprField(n, "value"); err != nil {
			return ast.NoStmtID, err
		}
		if data.Mutable, err = d.flag(n, "mutable"); err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewLet(n.pos, data), nil
	case "AssignStmt":
		target, err := d.exprField(n, "target")
		if err != nil {
			return ast.NoStmtID, err
		}
		value, err := d.exprField(n, "value")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewAssign(n.pos, target, value), nil
	case "ExprStmt":
		e, err := d.exprField(n, "expr")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewExpr(n.pos, e), nil
	case "ReturnStmt":
		value, err := d.optExprField(n, "value")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewReturn(n.pos, value), nil
	case "IfStmt":
		cond, err := d.exprField(n, "condition")
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := d.stmtField(n, "thenBranch")
		if err != nil {
			return ast.NoStmtID, err
		}
		els, err := d.optStmtField(n, "elseBranch")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewIf(n.pos, cond, then, els), nil
	case "ForStmt":
		iter, err := d.name(n, "iterator")
		if err != nil {
			return ast.NoStmtID, err
		}
		data := ast.StmtForData{Iterator: iter}
		if data.Start, err = d.exprField(n, "start"); err != nil {
			return ast.NoStmtID, err
		}
		if data.End, err = d.exprField(n, "end"); err != nil {
			return ast.NoStmtID, err
		}
		if data.Body, err = d.stmtField(n, "body"); err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewFor(n.pos, data), nil
	case "WhileStmt":
		cond, err := d.exprField(n, "condition")
		if err != nil {
			return ast.NoStmtID, err
		}
		body, err := d.stmtField(n, "body")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewWhile(n.pos, cond, body), nil
	case "LoopStmt":
		body, err := d.stmtField(n, "body")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewLoop(n.pos, body), nil
	case "BreakStmt":
		return d.b.Stmts.NewJump(n.pos, ast.StmtBreak), nil
	case "ContinueStmt":
		return d.b.Stmts.NewJump(n.pos, ast.StmtContinue), nil
	case "DropStmt":
		target, err := d.exprField(n, "target")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewDrop(n.pos, target), nil
	}
	e, err := d.expr(n)
	if err != nil {
		return ast.NoStmtID, err
	}
	return d.b.Stmts.NewExpr(n.pos, e), nil
}

func (d *decoder) exprField(n *node, key string) (ast.ExprID, error) {
	c, err := d.child(n, key)
	if err != nil {
		return ast.NoExprID, err
	}
	return d.expr(c)
}

func (d *decoder) optExprField(n *node, key string) (ast.ExprID, error) {
	if !d.has(n, key) {
		return ast.NoExprID, nil
	}
	return d.exprField(n, key)
}

func (d *decoder) expr(n *node) (ast.ExprID, error) {
	switch n.kind {
	case "NumberLiteral":
		v, err := d.integer(n, "value")
		if err != nil {
			return ast.NoExprID, err
		}
		suffix := source.NoStringID
		if t, ok, err := d.optString(n, "numberType"); err != nil {
			return ast.NoExprID, err
		} else if ok {
			suffix = d.b.Intern(t)
		}
		return d.b.Exprs.NewNumber(n.pos, v, suffix), nil
	case "BoolLiteral":
		v, err := d.flag(n, "value")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewBool(n.pos, v), nil
	case "StringLiteral", "CharLiteral":
		v, err := d.str(n, "value")
		if err != nil {
			return ast.NoExprID, err
		}
		kind := ast.ExprLitString
		if n.kind == "CharLiteral" {
			kind = ast.ExprLitChar
		}
		return d.b.Exprs.NewText(n.pos, kind, d.b.Intern(v)), nil
	case "Identifier":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewIdent(n.pos, name), nil
	case "BinaryExpr":
		op, err := d.binaryOp(n, "op")
		if err != nil {
			return ast.NoExprID, err
		}
		left, err := d.exprField(n, "left")
		if err != nil {
			return ast.NoExprID, err
		}
		right, err := d.exprField(n, "right")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewBinary(n.pos, op, left, right), nil
	case "UnaryExpr":
		raw, err := d.str(n, "op")
		if err != nil {
			return ast.NoExprID, err
		}
		op, ok := unaryOps[raw]
		if !ok {
			return ast.NoExprID, d.fail(n, "unknown unary operator %q", raw)
		}
		operand, err := d.exprField(n, "expr")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewUnary(n.pos, op, operand), nil
	case "CallExpr":
		callee, err := d.exprField(n, "callee")
		if err != nil {
			return ast.NoExprID, err
		}
		args, err := d.exprList(n, "args")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewCall(n.pos, callee, args), nil
	case "MemberExpr":
		target, err := d.exprField(n, "object")
		if err != nil {
			return ast.NoExprID, err
		}
		field, err := d.name(n, "property")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewMember(n.pos, target, field), nil
	case "IndexExpr":
		target, err := d.exprField(n, "target")
		if err != nil {
			return ast.NoExprID, err
		}
		index, err := d.exprField(n, "index")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewIndex(n.pos, target, index), nil
	case "StructInit":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoExprID, err
		}
		entries, err := d.entries(n, "fields")
		if err != nil {
			return ast.NoExprID, err
		}
		fields := make([]ast.ExprStructField, 0, len(entries))
		for _, e := range entries {
			key, err := d.name(e, "key")
			if err != nil {
				return ast.NoExprID, err
			}
			value, err := d.exprField(e, "value")
			if err != nil {
				return ast.NoExprID, err
			}
			fields = append(fields, ast.ExprStructField{Name: key, Value: value})
		}
		return d.b.Exprs.NewStruct(n.pos, name, fields), nil
	case "IfExpr":
		cond, err := d.exprField(n, "condition")
		if err != nil {
			return ast.NoExprID, err
		}
		then, err := d.exprField(n, "thenBranch")
		if err != nil {
			return ast.NoExprID, err
		}
		els, err := d.optExprField(n, "elseBranch")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewIf(n.pos, cond, then, els), nil
	case "MatchExpr":
		subject, err := d.exprField(n, "target")
		if err != nil {
			return ast.NoExprID, err
		}
		cases, err := d.entries(n, "cases")
		if err != nil {
			return ast.NoExprID, err
		}
		arms := make([]ast.ExprMatchArm, 0, len(cases))
		for _, c := range cases {
			pat, err := d.patternField(c, "pattern")
			if err != nil {
				return ast.NoExprID, err
			}
			body, err := d.exprField(c, "body")
			if err != nil {
				return ast.NoExprID, err
			}
			arms = append(arms, ast.ExprMatchArm{Pattern: pat, Body: body})
		}
		return d.b.Exprs.NewMatch(n.pos, subject, arms), nil
	case "IsExpr":
		value, err := d.exprField(n, "expr")
		if err != nil {
			return ast.NoExprID, err
		}
		pat, err := d.patternField(n, "pattern")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewIs(n.pos, value, pat), nil
	case "UnwrapExpr":
		value, err := d.exprField(n, "expr")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewUnwrap(n.pos, value), nil
	case "Block":
		stmts, err := d.list(n, "statements", false)
		if err != nil {
			return ast.NoExprID, err
		}
		ids := make([]ast.StmtID, 0, len(stmts))
		for _, s := range stmts {
			id, err := d.stmt(s)
			if err != nil {
				return ast.NoExprID, err
			}
			ids = append(ids, id)
		}
		return d.b.Exprs.NewBlock(n.pos, ids), nil
	}
	return ast.NoExprID, d.fail(n, "unknown expression kind")
}

var unaryOps = map[string]ast.ExprUnaryOp{
	"-":    ast.ExprUnaryNeg,
	"!":    ast.ExprUnaryNot,
	"&":    ast.ExprUnaryRef,
	"&mut": ast.ExprUnaryRefMut,
	"*":    ast.ExprUnaryDeref,
}

func (d *decoder) binaryOp(n *node, key string) (ast.ExprBinaryOp, error) {
	raw, err := d.str(n, key)
	if err != nil {
		return 0, err
	}
	op, ok := ast.ParseBinaryOp(raw)
	if !ok {
		return 0, d.fail(n, "unknown binary operator %q", raw)
	}
	return op, nil
}

func (d *decoder) exprList(n *node, key string) ([]ast.ExprID, error) {
	nodes, err := d.list(n, key, false)
	if err != nil {
		return nil, err
	}
	out := make([]ast.ExprID, 0, len(nodes))
	for _, c := range nodes {
		id, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *decoder) typeField(n *node, key string) (ast.TypeID, error) {
	c, err := d.child(n, key)
	if err != nil {
		return ast.NoTypeID, err
	}
	return d.typ(c)
}

func (d *decoder) optTypeField(n *node, key string) (ast.TypeID, error) {
	if !d.has(n, key) {
		return ast.NoTypeID, nil
	}
	return d.typeField(n, key)
}

func (d *decoder) typ(n *node) (ast.TypeID, error) {
	switch n.kind {
	case "NamedType":
		name, err := d.name(n, "name")
		if err != nil {
			return ast.NoTypeID, err
		}
		args, err := d.typeList(n, "genericArgs")
		if err != nil {
			return ast.NoTypeID, err
		}
		return d.b.Types.NewNamed(n.pos, name, args), nil
	case "RefinementType":
		base, err := d.typeField(n, "base")
		if err != nil {
			return ast.NoTypeID, err
		}
		op, err := d.binaryOp(n, "op")
		if err != nil {
			return ast.NoTypeID, err
		}
		value, err := d.exprField(n, "valueExpr")
		if err != nil {
			return ast.NoTypeID, err
		}
		return d.b.Types.NewRefinement(n.pos, base, op, value), nil
	case "UnionType":
		left, err := d.typeField(n, "left")
		if err != nil {
			return ast.NoTypeID, err
		}
		right, err := d.typeField(n, "right")
		if err != nil {
			return ast.NoTypeID, err
		}
		return d.b.Types.NewUnion(n.pos, left, right), nil
	case "ArrayType":
		elem, err := d.typeField(n, "element")
		if err != nil {
			return ast.NoTypeID, err
		}
		init, err := d.optExprField(n, "init")
		if err != nil {
			return ast.NoTypeID, err
		}
		total, err := d.optExprField(n, "total")
		if err != nil {
			return ast.NoTypeID, err
		}
		return d.b.Types.NewArray(n.pos, elem, init, total), nil
	case "PointerType":
		elem, err := d.typeField(n, "to")
		if err != nil {
			return ast.NoTypeID, err
		}
		mutable, err := d.flag(n, "mutable")
		if err != nil {
			return ast.NoTypeID, err
		}
		return d.b.Types.NewPointer(n.pos, elem, mutable), nil
	case "TupleType":
		members, err := d.typeList(n, "members")
		if err != nil {
			return ast.NoTypeID, err
		}
		return d.b.Types.NewTuple(n.pos, members), nil
	}
	return ast.NoTypeID, d.fail(n, "unknown type kind")
}

func (d *decoder) typeList(n *node, key string) ([]ast.TypeID, error) {
	nodes, err := d.list(n, key, false)
	if err != nil {
		return nil, err
	}
	out := make([]ast.TypeID, 0, len(nodes))
	for _, c := range nodes {
		id, err := d.typ(c)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *decoder) patternField(n *node, key string) (ast.PatternID, error) {
	c, err := d.child(n, key)
	if err != nil {
		return ast.NoPatternID, err
	}
	pat := ast.Pattern{Pos: c.pos}
	switch c.kind {
	case "WildcardPattern":
		pat.Kind = ast.PatternWildcard
	case "NamePattern":
		pat.Kind = ast.PatternName
		if pat.Name, err = d.name(c, "name"); err != nil {
			return ast.NoPatternID, err
		}
	case "StructPattern":
		pat.Kind = ast.PatternStruct
		if pat.Name, err = d.name(c, "name"); err != nil {
			return ast.NoPatternID, err
		}
		if pat.Fields, err = d.names(c, "fields"); err != nil {
			return ast.NoPatternID, err
		}
	case "LiteralPattern":
		pat.Kind = ast.PatternLiteral
		if pat.Value, err = d.literalValue(c); err != nil {
			return ast.NoPatternID, err
		}
	default:
		return ast.NoPatternID, d.fail(c, "unknown pattern kind")
	}
	return d.b.Patterns.New(pat), nil
}

// literalValue accepts either an expression node or a bare JSON scalar.
func (d *decoder) literalValue(n *node) (ast.ExprID, error) {
	raw, ok := n.fields["value"]
	if !ok || isNull(raw) {
		return ast.NoExprID, d.fail(n, "missing %q", "value")
	}
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ast.NoExprID, d.fail(n, "malformed value")
	}
	switch probe.(type) {
	case map[string]any:
		return d.exprField(n, "value")
	case bool:
		v, err := d.flag(n, "value")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewBool(n.pos, v), nil
	case float64:
		v, err := d.integer(n, "value")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewNumber(n.pos, v, source.NoStringID), nil
	case string:
		v, err := d.str(n, "value")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewText(n.pos, ast.ExprLitString, d.b.Intern(v)), nil
	}
	return ast.NoExprID, d.fail(n, "unsupported literal value")
}
