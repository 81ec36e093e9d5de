package ast

import (
	"tuff/internal/source"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemExternFn
	ItemStruct
	ItemEnum
	ItemTypeAlias
	ItemExternType
	ItemLet
	ItemExternLet
)

func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "FnDecl"
	case ItemExternFn:
		return "ExternFnDecl"
	case ItemStruct:
		return "StructDecl"
	case ItemEnum:
		return "EnumDecl"
	case ItemTypeAlias:
		return "TypeAlias"
	case ItemExternType:
		return "ExternTypeDecl"
	case ItemLet:
		return "LetDecl"
	case ItemExternLet:
		return "ExternLetDecl"
	}
	return "Item?"
}

type Item struct {
	Kind    ItemKind
	Pos     source.Pos
	Payload PayloadID
}

type FnParam struct {
	Name source.StringID
	Type TypeID
	Pos  source.Pos
}

// FnItem covers both defined and extern functions; extern ones have no Body.
type FnItem struct {
	Name     source.StringID
	Generics []source.StringID
	Params   []FnParam
	Result   TypeID
	Body     ExprID
}

type StructField struct {
	Name source.StringID
	Type TypeID
}

type StructItem struct {
	Name     source.StringID
	Generics []source.StringID
	Fields   []StructField
	Copy     bool
}

type EnumItem struct {
	Name     source.StringID
	Variants []source.StringID
	Copy     bool
}

// TypeAliasItem: Destructor names the function run when a value of the alias is dropped.
type TypeAliasItem struct {
	Name       source.StringID
	Generics   []source.StringID
	Target     TypeID
	Copy       bool
	Destructor source.StringID
}

type ExternTypeItem struct {
	Name     source.StringID
	Generics []source.StringID
}

// LetItem is a module-level binding; extern bindings carry no statement.
type LetItem struct {
	Stmt StmtID
	Name source.StringID
	Type TypeID
}

type Items struct {
	Arena       *Arena[Item]
	Fns         *Arena[FnItem]
	Structs     *Arena[StructItem]
	Enums       *Arena[EnumItem]
	Aliases     *Arena[TypeAliasItem]
	ExternTypes *Arena[ExternTypeItem]
	Lets        *Arena[LetItem]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:       NewArena[Item](capHint),
		Fns:         NewArena[FnItem](capHint),
		Structs:     NewArena[StructItem](capHint >> 2),
		Enums:       NewArena[EnumItem](capHint >> 2),
		Aliases:     NewArena[TypeAliasItem](capHint >> 2),
		ExternTypes: NewArena[ExternTypeItem](capHint >> 2),
		Lets:        NewArena[LetItem](capHint >> 2),
	}
}

func (i *Items) new(kind ItemKind, pos source.Pos, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:    kind,
		Pos:     pos,
		Payload: payload,
	}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewFn(pos source.Pos, fn FnItem, extern bool) ItemID {
	kind := ItemFn
	if extern {
		kind = ItemExternFn
	}
	return i.new(kind, pos, PayloadID(i.Fns.Allocate(fn)))
}

// Fn returns function data for both ItemFn and ItemExternFn.
func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || (item.Kind != ItemFn && item.Kind != ItemExternFn) {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) NewStruct(pos source.Pos, data StructItem) ItemID {
	return i.new(ItemStruct, pos, PayloadID(i.Structs.Allocate(data)))
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemStruct {
		return nil, false
	}
	return i.Structs.Get(uint32(item.Payload)), true
}

func (i *Items) NewEnum(pos source.Pos, data EnumItem) ItemID {
	return i.new(ItemEnum, pos, PayloadID(i.Enums.Allocate(data)))
}

func (i *Items) Enum(id ItemID) (*EnumItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemEnum {
		return nil, false
	}
	return i.Enums.Get(uint32(item.Payload)), true
}

func (i *Items) NewTypeAlias(pos source.Pos, data TypeAliasItem) ItemID {
	return i.new(ItemTypeAlias, pos, PayloadID(i.Aliases.Allocate(data)))
}

func (i *Items) TypeAlias(id ItemID) (*TypeAliasItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemTypeAlias {
		return nil, false
	}
	return i.Aliases.Get(uint32(item.Payload)), true
}

func (i *Items) NewExternType(pos source.Pos, data ExternTypeItem) ItemID {
	return i.new(ItemExternType, pos, PayloadID(i.ExternTypes.Allocate(data)))
}

func (i *Items) ExternType(id ItemID) (*ExternTypeItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemExternType {
		return nil, false
	}
	return i.ExternTypes.Get(uint32(item.Payload)), true
}

func (i *Items) NewLet(pos source.Pos, data LetItem, extern bool) ItemID {
	kind := ItemLet
	if extern {
		kind = ItemExternLet
	}
	return i.new(kind, pos, PayloadID(i.Lets.Allocate(data)))
}

// Let returns binding data for both ItemLet and ItemExternLet.
func (i *Items) Let(id ItemID) (*LetItem, bool) {
	item := i.Get(id)
	if item == nil || (item.Kind != ItemLet && item.Kind != ItemExternLet) {
		return nil, false
	}
	return i.Lets.Get(uint32(item.Payload)), true
}
