package structure

// ValueKind tags the variants of an attribute argument value.
type ValueKind string

const (
	// ValueString is a string literal.
	ValueString ValueKind = "string"
	// ValueInt is an integer literal.
	ValueInt ValueKind = "int"
	// ValueFloat is a floating-point literal.
	ValueFloat ValueKind = "float"
	// ValueBool is a boolean literal.
	ValueBool ValueKind = "bool"
	// ValueArray is an ordered array of values.
	ValueArray ValueKind = "array"
	// ValueTypeRef is a late-bound type reference (Foo.class). Ref holds
	// the qualified type name; resolution to a loaded type is deferred to
	// the apply phase.
	ValueTypeRef ValueKind = "type_ref"
	// ValueConstRef is a late-bound constant or enum reference
	// (Priority.HIGH). Ref holds the qualified reference.
	ValueConstRef ValueKind = "const_ref"
	// ValueExpr is an opaque expression the scanner does not evaluate.
	// Str holds the raw source text.
	ValueExpr ValueKind = "expr"
)

// Value is an attribute argument value. Only the field matching Kind is
// meaningful. Scanning never evaluates expressions, so non-literal arguments
// surface as late-bound references or opaque expressions.
type Value struct {
	Kind  ValueKind `json:"kind"`
	Str   string    `json:"str,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Bool  bool      `json:"bool,omitempty"`
	List  []Value   `json:"list,omitempty"`
	Ref   string    `json:"ref,omitempty"`
}

// StringValue builds a string literal value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// IntValue builds an integer literal value.
func IntValue(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// FloatValue builds a float literal value.
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// BoolValue builds a boolean literal value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// ArrayValue builds an array value.
func ArrayValue(items ...Value) Value { return Value{Kind: ValueArray, List: items} }

// TypeRefValue builds a late-bound type reference.
func TypeRefValue(qualified string) Value { return Value{Kind: ValueTypeRef, Ref: qualified} }

// ConstRefValue builds a late-bound constant reference.
func ConstRefValue(qualified string) Value { return Value{Kind: ValueConstRef, Ref: qualified} }

// ExprValue builds an opaque expression value from raw source text.
func ExprValue(raw string) Value { return Value{Kind: ValueExpr, Str: raw} }

// AsString returns the string content for string literals.
func (v Value) AsString() (string, bool) {
	if v.Kind == ValueString {
		return v.Str, true
	}
	return "", false
}

// AsInt returns the integer content for integer literals.
func (v Value) AsInt() (int64, bool) {
	if v.Kind == ValueInt {
		return v.Int, true
	}
	return 0, false
}

// AsBool returns the boolean content for boolean literals.
func (v Value) AsBool() (bool, bool) {
	if v.Kind == ValueBool {
		return v.Bool, true
	}
	return false, false
}

// Strings flattens an array of string literals. A bare string literal is
// treated as a one-element array, matching how repeatable annotation
// arguments are commonly written.
func (v Value) Strings() []string {
	switch v.Kind {
	case ValueString:
		return []string{v.Str}
	case ValueArray:
		var out []string
		for _, item := range v.List {
			if s, ok := item.AsString(); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Argument is one (optionally named) attribute argument.
type Argument struct {
	Name  string `json:"name,omitempty"`
	Value Value  `json:"value"`
}

// AttributeUsage is one application of an annotation on a class or method,
// with its arguments in source order.
type AttributeUsage struct {
	// Type is the qualified annotation type name.
	Type string `json:"type"`

	// Args are the annotation arguments in source order.
	Args []Argument `json:"args,omitempty"`
}

// Arg returns the value of the named argument. The single unnamed argument
// form (@Attr("x")) answers to the conventional name "value".
func (a AttributeUsage) Arg(name string) (Value, bool) {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	if name == "value" {
		for _, arg := range a.Args {
			if arg.Name == "" {
				return arg.Value, true
			}
		}
	}
	return Value{}, false
}

// StringArg returns the named argument as a string literal, or def when the
// argument is absent or not a string.
func (a AttributeUsage) StringArg(name, def string) string {
	if v, ok := a.Arg(name); ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return def
}

// IntArg returns the named argument as an integer literal, or def.
func (a AttributeUsage) IntArg(name string, def int64) int64 {
	if v, ok := a.Arg(name); ok {
		if i, ok := v.AsInt(); ok {
			return i
		}
	}
	return def
}

// BoolArg returns the named argument as a boolean literal, or def.
func (a AttributeUsage) BoolArg(name string, def bool) bool {
	if v, ok := a.Arg(name); ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}
