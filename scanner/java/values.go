package java

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c360studio/structscan/structure"
)

// extractValue converts one annotation argument node into a structure.Value.
// Literals become typed values; class literals and constant references
// become late-bound reference tokens resolved at apply time; anything else
// is kept as an opaque expression. Nothing is ever evaluated.
func extractValue(node *sitter.Node, content []byte, res *resolver) structure.Value {
	switch node.Type() {
	case "string_literal":
		return structure.StringValue(unquoteString(text(node, content)))

	case "character_literal":
		return structure.StringValue(unquoteChar(text(node, content)))

	case "decimal_integer_literal", "hex_integer_literal",
		"octal_integer_literal", "binary_integer_literal":
		return intValue(text(node, content))

	case "decimal_floating_point_literal", "hex_floating_point_literal":
		return floatValue(text(node, content))

	case "true":
		return structure.BoolValue(true)

	case "false":
		return structure.BoolValue(false)

	case "unary_expression":
		// Negative literals parse as unary expressions.
		if operand := node.ChildByFieldName("operand"); operand != nil {
			inner := extractValue(operand, content, res)
			if text(node.Child(0), content) == "-" {
				switch inner.Kind {
				case structure.ValueInt:
					return structure.IntValue(-inner.Int)
				case structure.ValueFloat:
					return structure.FloatValue(-inner.Float)
				}
			}
		}
		return structure.ExprValue(text(node, content))

	case "element_value_array_initializer":
		items := make([]structure.Value, 0, node.NamedChildCount())
		for i := 0; i < int(node.NamedChildCount()); i++ {
			items = append(items, extractValue(node.NamedChild(i), content, res))
		}
		return structure.ArrayValue(items...)

	case "class_literal":
		// Foo.class stays a late-bound type reference.
		if typeNode := node.NamedChild(0); typeNode != nil {
			return structure.TypeRefValue(res.resolve(text(typeNode, content)))
		}
		return structure.ExprValue(text(node, content))

	case "field_access":
		// Enum or constant reference like Priority.HIGH.
		obj := node.ChildByFieldName("object")
		field := node.ChildByFieldName("field")
		if obj != nil && field != nil {
			return structure.ConstRefValue(res.resolve(text(obj, content)) + "." + text(field, content))
		}
		return structure.ExprValue(text(node, content))

	case "identifier":
		// Bare constant reference within the annotated type.
		return structure.ConstRefValue(res.resolve(text(node, content)))

	default:
		return structure.ExprValue(text(node, content))
	}
}

func intValue(raw string) structure.Value {
	s := strings.TrimRight(raw, "lL")
	s = strings.ReplaceAll(s, "_", "")
	// Base 0 handles 0x, 0b, and leading-zero octal forms.
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return structure.IntValue(i)
	}
	return structure.ExprValue(raw)
}

func floatValue(raw string) structure.Value {
	s := strings.TrimRight(raw, "fFdD")
	s = strings.ReplaceAll(s, "_", "")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return structure.FloatValue(f)
	}
	return structure.ExprValue(raw)
}

// unquoteString strips surrounding quotes and decodes common escapes.
func unquoteString(raw string) string {
	s := raw
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, "\\") {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\\', '\'':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func unquoteChar(raw string) string {
	s := raw
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return unquoteString(`"` + s + `"`)
}
