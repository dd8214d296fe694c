package builtin

import (
	"context"
	"fmt"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// HookItem is one annotated callback method.
type HookItem struct {
	Class        string `json:"class"`
	Method       string `json:"method"`
	Kind         string `json:"kind"` // "action" or "filter"
	Hook         string `json:"hook"`
	Priority     int    `json:"priority"`
	AcceptedArgs int    `json:"accepted_args"`
}

// HookRegistrar receives collected hook callbacks during apply.
type HookRegistrar interface {
	RegisterCallback(ctx context.Context, item HookItem) error
}

// HookDiscovery finds concrete classes with action- or filter-annotated
// methods. Both annotations are repeatable; repeated uses on one method
// yield one item each, in source order.
type HookDiscovery struct {
	base[HookItem]

	// ActionAttribute and FilterAttribute are the matched annotation types.
	// Override before registering the discovery.
	ActionAttribute string
	FilterAttribute string

	registrar HookRegistrar
}

// NewHookDiscovery creates the hook discovery. A nil registrar collects
// without applying.
func NewHookDiscovery(registrar HookRegistrar) *HookDiscovery {
	return &HookDiscovery{
		base:            newBase[HookItem]("hooks"),
		ActionAttribute: AttrAction,
		FilterAttribute: AttrFilter,
		registrar:       registrar,
	}
}

// Discover records one item per action or filter annotation on the
// structure's methods.
func (d *HookDiscovery) Discover(loc location.Location, st *structure.Descriptor) error {
	if st.Kind != structure.KindClass || st.Abstract {
		return nil
	}

	for _, m := range st.Methods {
		for _, attr := range m.Attributes {
			var kind string
			switch attr.Type {
			case d.ActionAttribute:
				kind = "action"
			case d.FilterAttribute:
				kind = "filter"
			default:
				continue
			}

			hook := attr.StringArg("value", "")
			if hook == "" {
				return fmt.Errorf("%s.%s: %s annotation missing hook name",
					st.QualifiedName, m.Name, kind)
			}

			d.items.Add(loc, HookItem{
				Class:        st.QualifiedName,
				Method:       m.Name,
				Kind:         kind,
				Hook:         hook,
				Priority:     d.intArg(attr, "priority", 10),
				AcceptedArgs: d.intArg(attr, "acceptedArgs", 1),
			})
		}
	}
	return nil
}

func (d *HookDiscovery) intArg(attr structure.AttributeUsage, name string, def int) int {
	return int(attr.IntArg(name, int64(def)))
}

// Apply registers every collected callback.
func (d *HookDiscovery) Apply(ctx context.Context) error {
	if d.registrar == nil {
		return nil
	}
	return d.items.Each(func(_ location.Location, item HookItem) error {
		if err := d.registrar.RegisterCallback(ctx, item); err != nil {
			return fmt.Errorf("registering %s hook %s for %s.%s: %w",
				item.Kind, item.Hook, item.Class, item.Method, err)
		}
		return nil
	})
}
