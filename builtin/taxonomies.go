package builtin

import (
	"context"
	"fmt"

	"github.com/c360studio/structscan/discovery"
	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// TaxonomyItem is one annotated taxonomy class.
type TaxonomyItem struct {
	Class       string   `json:"class"`
	Name        string   `json:"name"`
	ObjectTypes []string `json:"object_types,omitempty"`
}

// TaxonomyRegistrar receives collected taxonomies during apply.
type TaxonomyRegistrar interface {
	RegisterTaxonomy(ctx context.Context, item TaxonomyItem) error
}

// TaxonomyDiscovery finds concrete classes carrying the taxonomy
// annotation. Register it before ContentTypeDiscovery when content types
// reference taxonomies at registration time.
type TaxonomyDiscovery struct {
	base[TaxonomyItem]

	// Attribute is the matched annotation type. Override before registering.
	Attribute string

	registrar TaxonomyRegistrar
}

// NewTaxonomyDiscovery creates the taxonomy discovery. A nil registrar
// collects without applying.
func NewTaxonomyDiscovery(registrar TaxonomyRegistrar) *TaxonomyDiscovery {
	return &TaxonomyDiscovery{
		base:      newBase[TaxonomyItem]("taxonomies"),
		Attribute: AttrTaxonomy,
		registrar: registrar,
	}
}

// Discover records classes matching the taxonomy annotation.
func (d *TaxonomyDiscovery) Discover(loc location.Location, st *structure.Descriptor) error {
	criteria := discovery.And(discovery.Concrete(), discovery.HasClassAttribute(d.Attribute))
	if !criteria.Matches(st) {
		return nil
	}

	for _, attr := range st.AttributesOf(d.Attribute) {
		name := attr.StringArg("value", "")
		if name == "" {
			return fmt.Errorf("%s: taxonomy annotation missing name", st.QualifiedName)
		}

		item := TaxonomyItem{Class: st.QualifiedName, Name: name}
		if arg, ok := attr.Arg("objectTypes"); ok {
			item.ObjectTypes = arg.Strings()
		}
		d.items.Add(loc, item)
	}
	return nil
}

// Apply registers every collected taxonomy.
func (d *TaxonomyDiscovery) Apply(ctx context.Context) error {
	if d.registrar == nil {
		return nil
	}
	return d.items.Each(func(_ location.Location, item TaxonomyItem) error {
		if err := d.registrar.RegisterTaxonomy(ctx, item); err != nil {
			return fmt.Errorf("registering taxonomy %s (%s): %w",
				item.Name, item.Class, err)
		}
		return nil
	})
}
