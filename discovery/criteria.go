package discovery

import (
	"strings"

	"github.com/c360studio/structscan/structure"
)

// Criteria is a structural-match predicate over scanned descriptors.
type Criteria interface {
	Matches(st *structure.Descriptor) bool
}

// CriteriaFunc adapts a plain function to the Criteria interface.
type CriteriaFunc func(st *structure.Descriptor) bool

// Matches implements Criteria.
func (f CriteriaFunc) Matches(st *structure.Descriptor) bool { return f(st) }

// Implements matches types declaring the given interface.
func Implements(iface string) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return st.ImplementsInterface(iface)
	})
}

// Extends matches types whose parent is the given class.
func Extends(parent string) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return st.Parent == parent
	})
}

// HasClassAttribute matches types carrying a class-level attribute of the
// given qualified type.
func HasClassAttribute(attrType string) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return st.HasAttribute(attrType)
	})
}

// HasMethodAttribute matches types with any method carrying an attribute of
// the given qualified type.
func HasMethodAttribute(attrType string) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return st.HasMethodAttribute(attrType)
	})
}

// NameSuffix matches types whose simple name ends with the suffix.
func NameSuffix(suffix string) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return strings.HasSuffix(st.Name, suffix)
	})
}

// NamePrefix matches types whose simple name starts with the prefix.
func NamePrefix(prefix string) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return strings.HasPrefix(st.Name, prefix)
	})
}

// Concrete matches non-abstract classes. Built-in discoveries compose with
// this unconditionally: abstract types cannot be registered as components.
func Concrete() Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		return st.Kind == structure.KindClass && !st.Abstract
	})
}

// And matches when every criterion matches.
func And(criteria ...Criteria) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		for _, c := range criteria {
			if !c.Matches(st) {
				return false
			}
		}
		return true
	})
}

// Or matches when any criterion matches.
func Or(criteria ...Criteria) Criteria {
	return CriteriaFunc(func(st *structure.Descriptor) bool {
		for _, c := range criteria {
			if c.Matches(st) {
				return true
			}
		}
		return false
	})
}
