package java

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// resolver qualifies type references using the compilation unit's import
// table, the way the compiler would. Resolution order: single-type import,
// sibling type in the same unit, java.lang, on-demand import (best-effort:
// the first wildcard wins since a classpath is unavailable), then the
// current package.
type resolver struct {
	pkg      string
	single   map[string]string // simple name → fully-qualified name
	wildcard []string          // on-demand import prefixes
	siblings map[string]string // simple name → qualified name in this unit
}

func newResolver(pkg string) *resolver {
	return &resolver{
		pkg:      pkg,
		single:   make(map[string]string),
		siblings: make(map[string]string),
	}
}

// addImport records one import declaration. Static imports are ignored:
// they bring in members, not types.
func (r *resolver) addImport(node *sitter.Node, content []byte) {
	raw := text(node, content)
	if strings.Contains(raw, "import static ") {
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "scoped_identifier" && child.Type() != "identifier" {
			continue
		}
		path := text(child, content)
		if strings.Contains(raw, path+".*") {
			r.wildcard = append(r.wildcard, path)
			continue
		}
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			r.single[path[idx+1:]] = path
		}
	}
}

func (r *resolver) addSibling(name, qualified string) {
	if _, exists := r.siblings[name]; !exists {
		r.siblings[name] = qualified
	}
}

// qualify prefixes a simple name with the current package.
func (r *resolver) qualify(name string) string {
	if r.pkg == "" {
		return name
	}
	return r.pkg + "." + name
}

// resolve turns a possibly-partial type reference into a qualified name.
func (r *resolver) resolve(name string) string {
	if name == "" {
		return ""
	}

	if idx := strings.Index(name, "."); idx >= 0 {
		// Partially qualified: Outer.Inner where Outer is imported.
		if fqn, ok := r.single[name[:idx]]; ok {
			return fqn + name[idx:]
		}
		if qn, ok := r.siblings[name[:idx]]; ok {
			return qn + name[idx:]
		}
		return name
	}

	if fqn, ok := r.single[name]; ok {
		return fqn
	}
	if qn, ok := r.siblings[name]; ok {
		return qn
	}
	if javaLang[name] {
		return "java.lang." + name
	}
	if len(r.wildcard) > 0 {
		return r.wildcard[0] + "." + name
	}
	return r.qualify(name)
}

// javaLang lists the java.lang types likely to appear in scanned sources.
var javaLang = map[string]bool{
	"Object": true, "String": true, "Class": true, "Enum": true, "Void": true,
	"Boolean": true, "Byte": true, "Character": true, "Short": true,
	"Integer": true, "Long": true, "Float": true, "Double": true,
	"Number": true, "Math": true, "System": true, "Thread": true,
	"Runnable": true, "Comparable": true, "Cloneable": true, "Iterable": true,
	"CharSequence": true, "StringBuilder": true, "StringBuffer": true,
	"Throwable": true, "Exception": true, "RuntimeException": true, "Error": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true,
	"FunctionalInterface": true, "SafeVarargs": true,
}
