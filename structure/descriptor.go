// Package structure defines the parsed, side-effect-free descriptors the
// scanner produces for one source-level type. Descriptors carry everything
// discoveries match on: kind, qualified names, inheritance, annotations with
// their literal arguments, and methods. No application code is ever loaded
// or executed to build one.
package structure

// Kind classifies a source-level type.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
)

// Visibility indicates the declared access level of a member.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Descriptor summarizes one scanned type.
type Descriptor struct {
	// Kind is the type kind (class, interface, enum).
	Kind Kind `json:"kind"`

	// Name is the simple type name.
	Name string `json:"name"`

	// QualifiedName is the fully-qualified type name (package.Outer.Inner).
	QualifiedName string `json:"qualified_name"`

	// Package is the declaring package.
	Package string `json:"package,omitempty"`

	// SourcePath is the file the descriptor was parsed from.
	SourcePath string `json:"source_path"`

	// Parent is the qualified name of the extended class, if any.
	Parent string `json:"parent,omitempty"`

	// Implements lists qualified names of implemented interfaces.
	Implements []string `json:"implements,omitempty"`

	// Abstract marks abstract types. Abstract types are never matched by
	// built-in discoveries.
	Abstract bool `json:"abstract,omitempty"`

	// Attributes are class-level annotations in source order. The same
	// attribute type may appear more than once.
	Attributes []AttributeUsage `json:"attributes,omitempty"`

	// Methods are declared methods in source order. A slice rather than a
	// map so overloads and attribute ordering survive round-trips.
	Methods []Method `json:"methods,omitempty"`
}

// Method describes one declared method.
type Method struct {
	Name       string           `json:"name"`
	Visibility Visibility       `json:"visibility"`
	Attributes []AttributeUsage `json:"attributes,omitempty"`
}

// HasAttribute reports whether the type carries at least one class-level
// attribute of the given qualified type.
func (d *Descriptor) HasAttribute(attrType string) bool {
	for _, a := range d.Attributes {
		if a.Type == attrType {
			return true
		}
	}
	return false
}

// AttributesOf returns all class-level attributes of the given qualified
// type, in source order.
func (d *Descriptor) AttributesOf(attrType string) []AttributeUsage {
	var out []AttributeUsage
	for _, a := range d.Attributes {
		if a.Type == attrType {
			out = append(out, a)
		}
	}
	return out
}

// ImplementsInterface reports whether the type declares the given interface.
func (d *Descriptor) ImplementsInterface(iface string) bool {
	for _, i := range d.Implements {
		if i == iface {
			return true
		}
	}
	return false
}

// HasMethodAttribute reports whether any method carries an attribute of the
// given qualified type.
func (d *Descriptor) HasMethodAttribute(attrType string) bool {
	for _, m := range d.Methods {
		for _, a := range m.Attributes {
			if a.Type == attrType {
				return true
			}
		}
	}
	return false
}

// Method returns the first declared method with the given name.
func (d *Descriptor) Method(name string) (Method, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}
