// Package schema declares the per-route field schemas. Schemas are
// immutable and loaded once at startup; the collector and the
// orchestrator both key off them.
package schema

// FieldType is the semantic type of a collected field. It decides which
// value parser coerces the raw extraction output.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeMoney    FieldType = "money"
	TypeCurrency FieldType = "currency"
	TypeCount    FieldType = "count"
	TypeDuration FieldType = "duration"
	TypeChoice   FieldType = "choice"
)

// Field is a single named, typed datum collected from the user.
type Field struct {
	Key         string
	Label       string
	Description string
	Type        FieldType
	Required    bool
}

// RouteSchema is the ordered set of fields for one named workflow.
type RouteSchema struct {
	Route  string
	Opener string
	Fields []Field
}

// Field returns the declaration for key, if present.
func (s RouteSchema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredKeys returns the keys of all required fields in schema order.
func (s RouteSchema) RequiredKeys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Registry holds all route schemas known at startup.
type Registry struct {
	routes map[string]RouteSchema
	order  []string
}

func NewRegistry(schemas ...RouteSchema) *Registry {
	r := &Registry{routes: make(map[string]RouteSchema, len(schemas))}
	for _, s := range schemas {
		if _, dup := r.routes[s.Route]; dup {
			continue
		}
		r.routes[s.Route] = s
		r.order = append(r.order, s.Route)
	}
	return r
}

// Route looks up a schema by route name.
func (r *Registry) Route(name string) (RouteSchema, bool) {
	s, ok := r.routes[name]
	return s, ok
}

// Names returns the registered route names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
