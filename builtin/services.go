package builtin

import (
	"context"
	"fmt"

	"github.com/c360studio/structscan/discovery"
	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// ServiceItem is one discovered service provider class.
type ServiceItem struct {
	Class string `json:"class"`
}

// ServiceRegistrar receives collected service providers during apply.
type ServiceRegistrar interface {
	RegisterProvider(ctx context.Context, item ServiceItem) error
}

// ServiceDiscovery finds concrete classes implementing the service
// provider interface. Interface-based rather than annotation-based:
// providers declare themselves by contract.
type ServiceDiscovery struct {
	base[ServiceItem]

	// Interface is the matched interface name. Override before registering.
	Interface string

	registrar ServiceRegistrar
}

// NewServiceDiscovery creates the service provider discovery. A nil
// registrar collects without applying.
func NewServiceDiscovery(registrar ServiceRegistrar) *ServiceDiscovery {
	return &ServiceDiscovery{
		base:      newBase[ServiceItem]("services"),
		Interface: IfaceServiceProvider,
		registrar: registrar,
	}
}

// Discover records classes implementing the provider interface.
func (d *ServiceDiscovery) Discover(loc location.Location, st *structure.Descriptor) error {
	criteria := discovery.And(discovery.Concrete(), discovery.Implements(d.Interface))
	if !criteria.Matches(st) {
		return nil
	}

	d.items.Add(loc, ServiceItem{Class: st.QualifiedName})
	return nil
}

// Apply registers every collected provider.
func (d *ServiceDiscovery) Apply(ctx context.Context) error {
	if d.registrar == nil {
		return nil
	}
	return d.items.Each(func(_ location.Location, item ServiceItem) error {
		if err := d.registrar.RegisterProvider(ctx, item); err != nil {
			return fmt.Errorf("registering provider %s: %w", item.Class, err)
		}
		return nil
	})
}
