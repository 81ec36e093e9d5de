package astjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fortio.org/safecast"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/source"
)

// malformed is the internal error every decode step returns; Decode turns it
// into a diagnostic.
type malformed struct {
	pos source.Pos
	msg string
}

func (m *malformed) Error() string { return m.msg }

// node is one decoded JSON object with its kind and location already pulled out.
type node struct {
	kind   string
	pos    source.Pos
	fields map[string]json.RawMessage
}

type decoder struct {
	b    *ast.Builder
	unit source.FileID
}

// Decode reads one resolver document into b. Positions are tagged with unit,
// the FileSet entry the document was loaded as.
func Decode(b *ast.Builder, unit source.FileID, data []byte) (ast.FileID, *diag.Diagnostic) {
	d := &decoder{b: b, unit: unit}
	file, err := d.program(data)
	if err != nil {
		m, ok := err.(*malformed)
		if !ok {
			m = &malformed{pos: source.Pos{File: unit, Line: 1, Col: 1}, msg: err.Error()}
		}
		return ast.NoFileID, diag.NewError(diag.InputMalformed, m.pos, m.msg)
	}
	return file, nil
}

func (d *decoder) program(data []byte) (ast.FileID, error) {
	root, err := d.parse(json.RawMessage(data), source.Pos{File: d.unit, Line: 1, Col: 1})
	if err != nil {
		return ast.NoFileID, err
	}
	if root.kind != "Program" {
		return ast.NoFileID, d.fail(root, "expected a Program node, got %q", root.kind)
	}
	origin := source.NoStringID
	if path, ok, err := d.optString(root, "file"); err != nil {
		return ast.NoFileID, err
	} else if ok {
		origin = d.b.Intern(path)
	}
	file := d.b.NewFile(root.pos, origin)
	body, err := d.list(root, "body", true)
	if err != nil {
		return ast.NoFileID, err
	}
	for _, n := range body {
		item, err := d.item(n)
		if err != nil {
			return ast.NoFileID, err
		}
		d.b.PushItem(file, item)
	}
	return file, nil
}

// parse decodes raw as an object node. Nodes without loc inherit the
// position of their parent.
func (d *decoder) parse(raw json.RawMessage, parent source.Pos) (*node, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &malformed{pos: parent, msg: "expected an object node"}
	}
	n := &node{pos: parent, fields: fields}
	if err := json.Unmarshal(fields["kind"], &n.kind); err != nil || n.kind == "" {
		return nil, &malformed{pos: parent, msg: "node has no kind"}
	}
	if loc, ok := fields["loc"]; ok && !isNull(loc) {
		pos, err := d.loc(loc, parent)
		if err != nil {
			return nil, err
		}
		n.pos = pos
	}
	return n, nil
}

func (d *decoder) loc(raw json.RawMessage, parent source.Pos) (source.Pos, error) {
	var loc struct {
		Line   json.Number `json:"line"`
		Column json.Number `json:"column"`
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return parent, &malformed{pos: parent, msg: "malformed loc: " + err.Error()}
	}
	line, err := toUint32(loc.Line)
	if err != nil {
		return parent, &malformed{pos: parent, msg: "loc line: " + err.Error()}
	}
	col, err := toUint32(loc.Column)
	if err != nil {
		return parent, &malformed{pos: parent, msg: "loc column: " + err.Error()}
	}
	return source.Pos{File: d.unit, Line: line, Col: col}, nil
}

func (d *decoder) fail(n *node, format string, args ...any) error {
	return &malformed{pos: n.pos, msg: n.kind + ": " + fmt.Sprintf(format, args...)}
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (d *decoder) has(n *node, key string) bool {
	raw, ok := n.fields[key]
	return ok && !isNull(raw)
}

func (d *decoder) child(n *node, key string) (*node, error) {
	if !d.has(n, key) {
		return nil, d.fail(n, "missing %q", key)
	}
	c, err := d.parse(n.fields[key], n.pos)
	if err != nil {
		return nil, d.fail(n, "field %q: %v", key, err)
	}
	return c, nil
}

func (d *decoder) list(n *node, key string, required bool) ([]*node, error) {
	if !d.has(n, key) {
		if required {
			return nil, d.fail(n, "missing %q", key)
		}
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(n.fields[key], &raws); err != nil {
		return nil, d.fail(n, "field %q must be an array", key)
	}
	out := make([]*node, 0, len(raws))
	for i, raw := range raws {
		c, err := d.parse(raw, n.pos)
		if err != nil {
			return nil, d.fail(n, "%s[%d]: %v", key, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// entries decodes an array of kind-less objects such as params or struct fields.
func (d *decoder) entries(n *node, key string) ([]*node, error) {
	if !d.has(n, key) {
		return nil, nil
	}
	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(n.fields[key], &raws); err != nil {
		return nil, d.fail(n, "field %q must be an array of objects", key)
	}
	out := make([]*node, 0, len(raws))
	for _, fields := range raws {
		e := &node{kind: n.kind + "." + key, pos: n.pos, fields: fields}
		if loc, ok := fields["loc"]; ok && !isNull(loc) {
			pos, err := d.loc(loc, n.pos)
			if err != nil {
				return nil, err
			}
			e.pos = pos
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) str(n *node, key string) (string, error) {
	s, ok, err := d.optString(n, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", d.fail(n, "missing %q", key)
	}
	return s, nil
}

func (d *decoder) optString(n *node, key string) (string, bool, error) {
	if !d.has(n, key) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(n.fields[key], &s); err != nil {
		return "", false, d.fail(n, "field %q must be a string", key)
	}
	return s, true, nil
}

func (d *decoder) name(n *node, key string) (source.StringID, error) {
	s, err := d.str(n, key)
	if err != nil {
		return source.NoStringID, err
	}
	return d.b.Intern(s), nil
}

func (d *decoder) names(n *node, key string) ([]source.StringID, error) {
	if !d.has(n, key) {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(n.fields[key], &raws); err != nil {
		return nil, d.fail(n, "field %q must be an array", key)
	}
	out := make([]source.StringID, 0, len(raws))
	for i, raw := range raws {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			// {name: ...} objects are accepted too
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil || obj.Name == "" {
				return nil, d.fail(n, "%s[%d] must be a name", key, i)
			}
			s = obj.Name
		}
		out = append(out, d.b.Intern(s))
	}
	return out, nil
}

func (d *decoder) flag(n *node, key string) (bool, error) {
	if !d.has(n, key) {
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(n.fields[key], &v); err != nil {
		return false, d.fail(n, "field %q must be a boolean", key)
	}
	return v, nil
}

func (d *decoder) integer(n *node, key string) (int64, error) {
	var num json.Number
	if err := json.Unmarshal(n.fields[key], &num); err != nil {
		return 0, d.fail(n, "field %q must be a number", key)
	}
	v, err := toInt64(num)
	if err != nil {
		return 0, d.fail(n, "field %q: %v", key, err)
	}
	return v, nil
}

func toInt64(num json.Number) (int64, error) {
	if v, err := num.Int64(); err == nil {
		return v, nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	return safecast.Convert[int64](f)
}

func toUint32(num json.Number) (uint32, error) {
	if num == "" {
		return 0, nil
	}
	v, err := toInt64(num)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[uint32](v)
}
