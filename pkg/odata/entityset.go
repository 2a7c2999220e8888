package odata

// Schema maps an entity type's property names to their EDM types. It is
// the blank-instance metadata a Query consults when resolving a property
// reference in a filter.
type Schema map[string]string

// EntitySet is a named collection of entities of one type, reachable
// through a Service. It is the factory for queries against itself.
type EntitySet struct {
	name   string
	svc    Service
	schema Schema
}

// NewEntitySet binds an entity set name and schema to a service. A nil
// schema is allowed; every property reference then passes through raw.
func NewEntitySet(name string, svc Service, schema Schema) *EntitySet {
	return &EntitySet{name: name, svc: svc, schema: schema}
}

// Name returns the entity set name as it appears in request paths.
func (s *EntitySet) Name() string { return s.name }

// Service returns the service this entity set executes against.
func (s *EntitySet) Service() Service { return s.svc }

// Schema returns the entity type's property metadata.
func (s *EntitySet) Schema() Schema { return s.schema }

// Query starts a new query against this entity set.
func (s *EntitySet) Query() *Query {
	return &Query{set: s}
}

// resolve looks a property name up in the schema, falling back to a raw
// name token when the schema does not know it.
func (s *EntitySet) resolve(name string) operand {
	if typ, ok := s.schema[name]; ok {
		return resolvedProperty{name: name, edmType: typ}
	}
	return rawName(name)
}
