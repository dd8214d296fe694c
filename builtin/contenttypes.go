package builtin

import (
	"context"
	"fmt"

	"github.com/c360studio/structscan/discovery"
	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// ContentTypeItem is one annotated content type class.
type ContentTypeItem struct {
	Class        string `json:"class"`
	Name         string `json:"name"`
	Hierarchical bool   `json:"hierarchical"`
	Public       bool   `json:"public"`
}

// ContentTypeRegistrar receives collected content types during apply.
type ContentTypeRegistrar interface {
	RegisterContentType(ctx context.Context, item ContentTypeItem) error
}

// ContentTypeDiscovery finds concrete classes carrying the content type
// annotation.
type ContentTypeDiscovery struct {
	base[ContentTypeItem]

	// Attribute is the matched annotation type. Override before registering.
	Attribute string

	registrar ContentTypeRegistrar
}

// NewContentTypeDiscovery creates the content type discovery. A nil
// registrar collects without applying.
func NewContentTypeDiscovery(registrar ContentTypeRegistrar) *ContentTypeDiscovery {
	return &ContentTypeDiscovery{
		base:      newBase[ContentTypeItem]("content_types"),
		Attribute: AttrContentType,
		registrar: registrar,
	}
}

// Discover records classes matching the content type annotation.
func (d *ContentTypeDiscovery) Discover(loc location.Location, st *structure.Descriptor) error {
	criteria := discovery.And(discovery.Concrete(), discovery.HasClassAttribute(d.Attribute))
	if !criteria.Matches(st) {
		return nil
	}

	for _, attr := range st.AttributesOf(d.Attribute) {
		name := attr.StringArg("value", "")
		if name == "" {
			return fmt.Errorf("%s: content type annotation missing name", st.QualifiedName)
		}
		d.items.Add(loc, ContentTypeItem{
			Class:        st.QualifiedName,
			Name:         name,
			Hierarchical: attr.BoolArg("hierarchical", false),
			Public:       attr.BoolArg("isPublic", true),
		})
	}
	return nil
}

// Apply registers every collected content type.
func (d *ContentTypeDiscovery) Apply(ctx context.Context) error {
	if d.registrar == nil {
		return nil
	}
	return d.items.Each(func(_ location.Location, item ContentTypeItem) error {
		if err := d.registrar.RegisterContentType(ctx, item); err != nil {
			return fmt.Errorf("registering content type %s (%s): %w",
				item.Name, item.Class, err)
		}
		return nil
	})
}
