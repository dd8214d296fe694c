package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgNamedAndPositional(t *testing.T) {
	attr := AttributeUsage{
		Type: "io.c360.frame.hooks.Action",
		Args: []Argument{
			{Value: StringValue("init")}, // unnamed
			{Name: "priority", Value: IntValue(20)},
		},
	}

	v, ok := attr.Arg("value")
	assert.True(t, ok)
	assert.Equal(t, StringValue("init"), v)

	v, ok = attr.Arg("priority")
	assert.True(t, ok)
	assert.Equal(t, IntValue(20), v)

	_, ok = attr.Arg("missing")
	assert.False(t, ok)
}

func TestArgNamedValueWinsOverPositional(t *testing.T) {
	attr := AttributeUsage{
		Args: []Argument{
			{Value: StringValue("positional")},
			{Name: "value", Value: StringValue("named")},
		},
	}

	v, _ := attr.Arg("value")
	assert.Equal(t, "named", v.Str)
}

func TestTypedArgDefaults(t *testing.T) {
	attr := AttributeUsage{
		Args: []Argument{
			{Name: "hook", Value: StringValue("save_post")},
			{Name: "priority", Value: ConstRefValue("Priority.HIGH")},
		},
	}

	assert.Equal(t, "save_post", attr.StringArg("hook", "fallback"))
	assert.Equal(t, "fallback", attr.StringArg("absent", "fallback"))
	// A late-bound reference is not an int literal, so the default applies.
	assert.Equal(t, int64(10), attr.IntArg("priority", 10))
	assert.True(t, attr.BoolArg("absent", true))
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, []string{"post"}, StringValue("post").Strings())
	assert.Equal(t, []string{"post", "page"},
		ArrayValue(StringValue("post"), StringValue("page")).Strings())
	assert.Nil(t, IntValue(1).Strings())
}

func TestDescriptorLookups(t *testing.T) {
	d := &Descriptor{
		Kind:          KindClass,
		Name:          "ProductType",
		QualifiedName: "com.acme.ProductType",
		Implements:    []string{"com.acme.Registrable"},
		Attributes: []AttributeUsage{
			{Type: "io.c360.frame.registry.ContentType"},
		},
		Methods: []Method{
			{Name: "onSave", Attributes: []AttributeUsage{{Type: "io.c360.frame.hooks.Action"}}},
			{Name: "helper"},
		},
	}

	assert.True(t, d.HasAttribute("io.c360.frame.registry.ContentType"))
	assert.False(t, d.HasAttribute("io.c360.frame.registry.Taxonomy"))
	assert.True(t, d.ImplementsInterface("com.acme.Registrable"))
	assert.True(t, d.HasMethodAttribute("io.c360.frame.hooks.Action"))
	assert.False(t, d.HasMethodAttribute("io.c360.frame.hooks.Filter"))

	m, ok := d.Method("helper")
	assert.True(t, ok)
	assert.Empty(t, m.Attributes)
}
