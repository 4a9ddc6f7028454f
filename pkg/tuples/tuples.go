// Package tuples gives tuple expressions a type. Each distinct shape, an
// ordered list of field names and types, becomes a synthesized class
// with one field per entry.
package tuples

import (
	"context"
	"strconv"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

// Entry is one value of a tuple expression.
type Entry struct {
	// Node is the entry as written, including any label.
	Node *syntax.Node
	// Label is the explicit label, if any.
	Label string
	// Value is the value expression. It is nil for a labeled entry whose
	// value failed to parse.
	Value *syntax.Node
}

// Entries returns the entries of a tuple expression in source order.
func Entries(tuple *syntax.Node) []Entry {
	var entries []Entry
	for _, expr := range tuple.Expressions() {
		e := Entry{Node: expr, Value: expr}
		if expr.Kind == syntax.TupleValueExpr {
			e.Label = expr.Name()
			e.Value = expr.FirstExpression()
		}
		entries = append(entries, e)
	}
	return entries
}

// Field is one entry of a field map.
type Field struct {
	Name string
	Type types.Type
}

// FieldNames names the fields of a tuple's entries: the label if there is
// one, else the name of a referenced variable or field, else a name taken
// from a called method, else item1, item2 and so on. A name already taken
// gets a _2, _3 suffix.
func FieldNames(entries []Entry) []string {
	names := make([]string, len(entries))
	taken := map[string]bool{}
	unnamed := 0
	for i, e := range entries {
		name := e.Label
		if name == "" {
			name = inferName(e.Value)
		}
		if name == "" {
			unnamed++
			name = "item" + strconv.Itoa(unnamed)
		}
		item := name
		for n := 2; taken[item]; n++ {
			item = name + "_" + strconv.Itoa(n)
		}
		taken[item] = true
		names[i] = item
	}
	return names
}

func inferName(value *syntax.Node) string {
	if value == nil {
		return ""
	}
	switch value.Kind {
	case syntax.ReferenceExpr:
		return value.Name()
	case syntax.MethodCallExpr:
		return NameFromMethod(value.Name())
	}
	return ""
}

// NameFromMethod derives a field name from a method name: the part from
// the first upper-case letter on, lower camel cased, so getFirstName gives
// firstName. A name without an upper-case letter is used as is.
func NameFromMethod(method string) string {
	for i, r := range method {
		if unicode.IsUpper(r) {
			return strcase.ToLowerCamel(method[i:])
		}
	}
	return method
}

// ArgumentsTyper types a tuple that stands for the argument list of a
// call.
type ArgumentsTyper interface {
	ArgumentsType(ctx context.Context, call, tuple *syntax.Node) (types.Type, bool)
}

// Synthesizer types tuple expressions. It implements sema.TupleTyper.
type Synthesizer struct {
	Typer    *sema.Typer
	Provider *Provider

	// Arguments, when set, types tuples holding a call's labeled
	// arguments. Without it they have no type.
	Arguments ArgumentsTyper
}

var _ sema.TupleTyper = (*Synthesizer)(nil)

// NewSynthesizer returns a synthesizer declaring tuple classes into the
// typer's program, and installs it as the typer's tuple hook.
func NewSynthesizer(typer *sema.Typer) *Synthesizer {
	s := &Synthesizer{
		Typer:    typer,
		Provider: NewProvider(typer.Program()),
	}
	typer.Tuples = s
	return s
}

// TupleType implements sema.TupleTyper.
func (s *Synthesizer) TupleType(ctx context.Context, tuple *syntax.Node) types.Type {
	if call := ArgumentsOf(tuple); call != nil {
		if s.Arguments == nil {
			return nil
		}
		typ, _ := s.Arguments.ArgumentsType(ctx, call, tuple)
		return typ
	}

	prog := s.Typer.Program()
	if prog.EnclosingClass(tuple) == nil {
		return nil
	}

	fields := s.FieldMap(ctx, tuple)
	name := s.Provider.MakeType(prog.PackageOf(tuple), fields)
	cls := prog.LookupQualified(prog.PackageOf(tuple), name)
	if cls == nil {
		return nil
	}
	return cls.Raw()
}

// FieldMap returns the ordered field map of a tuple. Field types have the
// type variables that cannot be named at the tuple erased; the null type
// and unknown types are recorded as Object.
func (s *Synthesizer) FieldMap(ctx context.Context, tuple *syntax.Node) []Field {
	entries := Entries(tuple)
	names := FieldNames(entries)
	scope := s.Typer.Program().TypeVarsInScope(tuple)

	fields := make([]Field, len(entries))
	for i, e := range entries {
		var typ types.Type
		if e.Value != nil {
			typ = s.Typer.TypeOf(ctx, e.Value)
		}
		switch {
		case typ == nil, typ.Eq(types.Null):
			typ = types.ObjectType()
		default:
			typ = types.Erase(typ, scope)
		}
		fields[i] = Field{Name: names[i], Type: typ}
	}
	return fields
}

// ArgumentsOf returns the call whose labeled argument list is tuple, or
// nil if tuple is not an argument list.
func ArgumentsOf(tuple *syntax.Node) *syntax.Node {
	list := tuple.Parent
	if list == nil || list.Kind != syntax.ExpressionList {
		return nil
	}
	call := list.Parent
	if call == nil || sema.LabeledArguments(call) != tuple {
		return nil
	}
	return call
}
