package tools

import (
	"context"

	"fekra/internal/store"
)

type upcomingEventsArgs struct {
	From  string `json:"from" jsonschema:"format=date-time,description=ISO 8601 start of the range"`
	To    string `json:"to" jsonschema:"format=date-time,description=ISO 8601 end of the range"`
	Mode  string `json:"mode,omitempty" jsonschema:"enum=Online,enum=In-Person,enum=Hybrid"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

var eventFields = []string{"title", "startsAt", "endsAt", "mode", "location", "link"}

// upcomingEvents lists events whose start time falls inside [from, to],
// soonest first. Both bounds are inclusive.
func (e *Executor) upcomingEvents(ctx context.Context, a upcomingEventsArgs) (any, error) {
	filter := store.Filter{All: []store.Predicate{
		{Field: "startsAt", Op: store.OpGTE, Value: a.From},
		{Field: "startsAt", Op: store.OpLTE, Value: a.To},
	}}
	if a.Mode != "" {
		filter.All = append(filter.All, store.Predicate{Field: "mode", Op: store.OpEq, Value: a.Mode})
	}
	return e.store.Find(ctx, colEvents, store.Query{
		Filter: filter,
		Sort:   []store.Sort{{Field: "startsAt"}},
		Limit:  capLimit(a.Limit, 10),
		Fields: eventFields,
	})
}
