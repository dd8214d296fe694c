package builtin

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/c360studio/structscan/discovery"
	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// CommandItem is one discovered console command class.
type CommandItem struct {
	Class       string `json:"class"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CommandRegistrar receives collected console commands during apply.
type CommandRegistrar interface {
	RegisterCommand(ctx context.Context, item CommandItem) error
}

// CommandDiscovery finds concrete classes named with the Command suffix
// that either implement the console command interface or carry the command
// annotation. The annotation's name argument wins; otherwise the name
// derives from the class name (SyncUsersCommand becomes "sync-users").
type CommandDiscovery struct {
	base[CommandItem]

	// Attribute and Interface are the matched annotation and interface
	// names. Override before registering.
	Attribute string
	Interface string

	registrar CommandRegistrar
}

// NewCommandDiscovery creates the console command discovery. A nil
// registrar collects without applying.
func NewCommandDiscovery(registrar CommandRegistrar) *CommandDiscovery {
	return &CommandDiscovery{
		base:      newBase[CommandItem]("commands"),
		Attribute: AttrCommand,
		Interface: IfaceConsoleCommand,
		registrar: registrar,
	}
}

// Discover records classes matching the command naming and contract rules.
func (d *CommandDiscovery) Discover(loc location.Location, st *structure.Descriptor) error {
	criteria := discovery.And(
		discovery.Concrete(),
		discovery.NameSuffix("Command"),
		discovery.Or(
			discovery.Implements(d.Interface),
			discovery.HasClassAttribute(d.Attribute),
		),
	)
	if !criteria.Matches(st) {
		return nil
	}

	item := CommandItem{
		Class: st.QualifiedName,
		Name:  commandName(st.Name),
	}
	if attrs := st.AttributesOf(d.Attribute); len(attrs) > 0 {
		attr := attrs[0]
		if name := attr.StringArg("value", ""); name != "" {
			item.Name = name
		}
		item.Description = attr.StringArg("description", "")
	}

	d.items.Add(loc, item)
	return nil
}

// commandName derives a CLI name from a class name: strip the Command
// suffix and kebab-case the rest.
func commandName(className string) string {
	stem := strings.TrimSuffix(className, "Command")
	if stem == "" {
		stem = className
	}

	var b strings.Builder
	for i, r := range stem {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Apply registers every collected command.
func (d *CommandDiscovery) Apply(ctx context.Context) error {
	if d.registrar == nil {
		return nil
	}
	return d.items.Each(func(_ location.Location, item CommandItem) error {
		if err := d.registrar.RegisterCommand(ctx, item); err != nil {
			return fmt.Errorf("registering command %s (%s): %w",
				item.Name, item.Class, err)
		}
		return nil
	})
}
