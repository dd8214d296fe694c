// Package java provides Java structure scanning using tree-sitter. It
// extracts classes, interfaces, enums, and records with their annotations,
// inheritance, and methods, without executing any scanned code.
package java

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/scanner"
	"github.com/c360studio/structscan/structure"
)

func init() {
	scanner.DefaultRegistry.Register("java", []string{".java"},
		func(logger *slog.Logger) scanner.FileScanner {
			return New(logger)
		})
}

// Scanner extracts structure descriptors from Java source files.
type Scanner struct {
	parser *sitter.Parser
	logger *slog.Logger
}

// New creates a new Java scanner.
func New(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Scanner{
		parser: p,
		logger: logger,
	}
}

// ScanFile parses a single Java file and feeds every extracted descriptor
// to fn. Parsing is purely syntactic; files whose code would throw when
// executed still scan. Anonymous and local types produce nothing.
func (s *Scanner) ScanFile(ctx context.Context, loc location.Location, path string, fn scanner.Handler) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	tree, err := s.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()

	res := newResolver(extractPackageName(rootNode, content))
	for i := 0; i < int(rootNode.NamedChildCount()); i++ {
		child := rootNode.NamedChild(i)
		if child.Type() == "import_declaration" {
			res.addImport(child, content)
		}
	}
	// Sibling types in the same compilation unit resolve without imports.
	collectSiblings(rootNode, content, res)

	for i := 0; i < int(rootNode.NamedChildCount()); i++ {
		child := rootNode.NamedChild(i)
		if err := s.emitType(child, content, res, path, "", fn); err != nil {
			return err
		}
	}

	return nil
}

// emitType extracts one type declaration (and its nested types) and feeds
// the descriptors to fn. outer is the qualified name of the enclosing type,
// empty at the top level.
func (s *Scanner) emitType(node *sitter.Node, content []byte, res *resolver, path, outer string, fn scanner.Handler) error {
	var kind structure.Kind
	switch node.Type() {
	case "class_declaration", "record_declaration":
		kind = structure.KindClass
	case "interface_declaration":
		kind = structure.KindInterface
	case "enum_declaration":
		kind = structure.KindEnum
	default:
		return nil
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		// Anonymous/unnamed types produce nothing.
		return nil
	}
	name := text(nameNode, content)

	qualified := res.qualify(name)
	if outer != "" {
		qualified = outer + "." + name
	}

	st := &structure.Descriptor{
		Kind:          kind,
		Name:          name,
		QualifiedName: qualified,
		Package:       res.pkg,
		SourcePath:    path,
		Abstract:      hasModifier(node, content, "abstract"),
		Attributes:    extractAttributes(node, content, res),
	}

	// Superclass (classes only; records and enums cannot extend).
	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		if types := collectTypeNames(superclass, content); len(types) > 0 {
			st.Parent = res.resolve(types[0])
		}
	}

	// Implemented interfaces. For interfaces this records the extended
	// interface list; built-in discoveries only match classes, so the
	// distinction is immaterial downstream.
	for _, field := range []string{"interfaces", "extends"} {
		if ifaces := node.ChildByFieldName(field); ifaces != nil {
			for _, t := range collectTypeNames(ifaces, content) {
				st.Implements = append(st.Implements, res.resolve(t))
			}
		}
	}
	if st.Kind == structure.KindInterface && len(st.Implements) == 0 {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "extends_interfaces" {
				for _, t := range collectTypeNames(child, content) {
					st.Implements = append(st.Implements, res.resolve(t))
				}
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		st.Methods = extractMethods(body, content, res)
	}

	if err := fn(st); err != nil {
		return err
	}

	// Nested type declarations become their own descriptors.
	if body != nil {
		if err := s.emitNested(body, content, res, path, qualified, fn); err != nil {
			return err
		}
	}

	return nil
}

// emitNested walks a type body for nested type declarations.
func (s *Scanner) emitNested(body *sitter.Node, content []byte, res *resolver, path, outer string, fn scanner.Handler) error {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if err := s.emitType(child, content, res, path, outer, fn); err != nil {
				return err
			}
		case "enum_body_declarations":
			if err := s.emitNested(child, content, res, path, outer, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractMethods collects declared methods in source order. Enum bodies
// keep their methods inside an enum_body_declarations node.
func extractMethods(body *sitter.Node, content []byte, res *resolver) []structure.Method {
	var methods []structure.Method

	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			methods = append(methods, structure.Method{
				Name:       text(nameNode, content),
				Visibility: extractVisibility(child, content),
				Attributes: extractAttributes(child, content, res),
			})
		case "enum_body_declarations":
			methods = append(methods, extractMethods(child, content, res)...)
		}
	}

	return methods
}

// extractVisibility reads the access modifier. Package-private is reported
// as private.
func extractVisibility(node *sitter.Node, content []byte) structure.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			switch text(child.Child(j), content) {
			case "public":
				return structure.VisibilityPublic
			case "protected":
				return structure.VisibilityProtected
			case "private":
				return structure.VisibilityPrivate
			}
		}
	}
	return structure.VisibilityPrivate
}

// hasModifier checks for a modifier keyword (abstract, static, final, ...).
func hasModifier(node *sitter.Node, content []byte, modifier string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			if text(child.Child(j), content) == modifier {
				return true
			}
		}
	}
	return false
}

// extractAttributes collects annotation usages in source order, including
// those nested inside the modifiers node.
func extractAttributes(node *sitter.Node, content []byte, res *resolver) []structure.AttributeUsage {
	var attrs []structure.AttributeUsage

	visit := func(n *sitter.Node) {
		switch n.Type() {
		case "marker_annotation", "annotation":
			if usage, ok := extractAnnotation(n, content, res); ok {
				attrs = append(attrs, usage)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		visit(child)
		if child.Type() == "modifiers" {
			for j := 0; j < int(child.ChildCount()); j++ {
				visit(child.Child(j))
			}
		}
	}

	return attrs
}

// extractAnnotation converts one annotation node into an AttributeUsage.
func extractAnnotation(node *sitter.Node, content []byte, res *resolver) (structure.AttributeUsage, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return structure.AttributeUsage{}, false
	}

	usage := structure.AttributeUsage{
		Type: res.resolve(text(nameNode, content)),
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "element_value_pair" {
				key := arg.ChildByFieldName("key")
				value := arg.ChildByFieldName("value")
				if key == nil || value == nil {
					continue
				}
				usage.Args = append(usage.Args, structure.Argument{
					Name:  text(key, content),
					Value: extractValue(value, content, res),
				})
				continue
			}
			usage.Args = append(usage.Args, structure.Argument{
				Value: extractValue(arg, content, res),
			})
		}
	}

	return usage, true
}

// collectTypeNames descends a node until it finds concrete type references,
// stripping generics. Used for superclass and interface lists whose wrapper
// nodes vary across grammar constructs.
func collectTypeNames(node *sitter.Node, content []byte) []string {
	var names []string

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "type_identifier", "scoped_type_identifier":
			names = append(names, text(n, content))
		case "generic_type":
			if base := n.NamedChild(0); base != nil {
				walk(base)
			}
		default:
			for i := 0; i < int(n.NamedChildCount()); i++ {
				walk(n.NamedChild(i))
			}
		}
	}
	walk(node)

	return names
}

// extractPackageName extracts the package declaration, if any.
func extractPackageName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "package_declaration" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			pkgNode := child.NamedChild(j)
			if pkgNode.Type() == "scoped_identifier" || pkgNode.Type() == "identifier" {
				return text(pkgNode, content)
			}
		}
	}
	return ""
}

// collectSiblings records every named type declared in the compilation unit
// so unqualified references between them resolve without imports.
func collectSiblings(root *sitter.Node, content []byte, res *resolver) {
	var walk func(n *sitter.Node, outer string)
	walk = func(n *sitter.Node, outer string) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
				nameNode := child.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				name := text(nameNode, content)
				qualified := res.qualify(name)
				if outer != "" {
					qualified = outer + "." + name
				}
				res.addSibling(name, qualified)
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, qualified)
				}
			case "enum_body_declarations":
				walk(child, outer)
			}
		}
	}
	walk(root, "")
}

func text(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}
