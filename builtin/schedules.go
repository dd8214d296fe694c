package builtin

import (
	"context"
	"fmt"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// ScheduleItem is one annotated scheduled task method.
type ScheduleItem struct {
	Class  string `json:"class"`
	Method string `json:"method"`
	Cron   string `json:"cron"`
	Name   string `json:"name"`
}

// ScheduleRegistrar receives collected scheduled tasks during apply.
type ScheduleRegistrar interface {
	RegisterSchedule(ctx context.Context, item ScheduleItem) error
}

// ScheduleDiscovery finds concrete classes with schedule-annotated methods.
type ScheduleDiscovery struct {
	base[ScheduleItem]

	// Attribute is the matched annotation type. Override before registering.
	Attribute string

	registrar ScheduleRegistrar
}

// NewScheduleDiscovery creates the schedule discovery. A nil registrar
// collects without applying.
func NewScheduleDiscovery(registrar ScheduleRegistrar) *ScheduleDiscovery {
	return &ScheduleDiscovery{
		base:      newBase[ScheduleItem]("schedules"),
		Attribute: AttrSchedule,
		registrar: registrar,
	}
}

// Discover records one item per schedule annotation on the structure's
// methods. The task name defaults to Class.method when not given.
func (d *ScheduleDiscovery) Discover(loc location.Location, st *structure.Descriptor) error {
	if st.Kind != structure.KindClass || st.Abstract {
		return nil
	}

	for _, m := range st.Methods {
		for _, attr := range m.Attributes {
			if attr.Type != d.Attribute {
				continue
			}

			cron := attr.StringArg("value", attr.StringArg("cron", ""))
			if cron == "" {
				return fmt.Errorf("%s.%s: schedule annotation missing cron expression",
					st.QualifiedName, m.Name)
			}

			d.items.Add(loc, ScheduleItem{
				Class:  st.QualifiedName,
				Method: m.Name,
				Cron:   cron,
				Name:   attr.StringArg("name", st.QualifiedName+"."+m.Name),
			})
		}
	}
	return nil
}

// Apply registers every collected schedule.
func (d *ScheduleDiscovery) Apply(ctx context.Context) error {
	if d.registrar == nil {
		return nil
	}
	return d.items.Each(func(_ location.Location, item ScheduleItem) error {
		if err := d.registrar.RegisterSchedule(ctx, item); err != nil {
			return fmt.Errorf("registering schedule %s: %w", item.Name, err)
		}
		return nil
	})
}
