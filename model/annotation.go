package model

// Kind identifies the record variant of an annotation
type Kind string

const (
	KindEntity           Kind = "entity"
	KindEvent            Kind = "event"
	KindRelation         Kind = "relation"
	KindAttribute        Kind = "attribute"
	KindNote             Kind = "note"
	KindEquivalenceGroup Kind = "equivalence"
)

// EquivalenceID is the identifier column of every equivalence group line
const EquivalenceID = "*"

// Annotation is one standoff record. The set of implementations is closed,
// use a type switch to recover the concrete variant.
type Annotation interface {
	GetID() string
	GetType() string
	Kind() Kind
	// References returns every identifier the record points at, in grammar order.
	References() []string

	annotation()
}

// Span is a half-open character range [Begin, End) into the document text
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Len returns the number of characters covered by the span
func (s Span) Len() int {
	return s.End - s.Begin
}

// Argument is one role:id pair of an event or relation
type Argument struct {
	Role string `json:"role"`
	ID   string `json:"id"`
}

// Entity is a typed, possibly discontinuous, span over the text
type Entity struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Spans []Span `json:"spans"`
	Text  string `json:"text"`
}

func (e *Entity) GetID() string        { return e.ID }
func (e *Entity) GetType() string      { return e.Type }
func (e *Entity) Kind() Kind           { return KindEntity }
func (e *Entity) References() []string { return nil }
func (e *Entity) annotation()          {}

// Begin returns the begin offset of the first span, or -1 without spans
func (e *Entity) Begin() int {
	if len(e.Spans) == 0 {
		return -1
	}
	return e.Spans[0].Begin
}

// Event is anchored to a trigger entity and links arguments by role
type Event struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	TriggerID string     `json:"trigger_id"`
	Arguments []Argument `json:"arguments,omitempty"`
}

func (e *Event) GetID() string   { return e.ID }
func (e *Event) GetType() string { return e.Type }
func (e *Event) Kind() Kind      { return KindEvent }
func (e *Event) annotation()     {}

func (e *Event) References() []string {
	refs := make([]string, 0, len(e.Arguments)+1)
	refs = append(refs, e.TriggerID)
	for _, arg := range e.Arguments {
		refs = append(refs, arg.ID)
	}
	return refs
}

// Argument returns the id bound to the first argument with the given role
func (e *Event) Argument(role string) (string, bool) {
	return findArgument(e.Arguments, role)
}

// Relation links two or more annotations by role
type Relation struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Arguments []Argument `json:"arguments"`
}

func (r *Relation) GetID() string   { return r.ID }
func (r *Relation) GetType() string { return r.Type }
func (r *Relation) Kind() Kind      { return KindRelation }
func (r *Relation) annotation()     {}

func (r *Relation) References() []string {
	refs := make([]string, 0, len(r.Arguments))
	for _, arg := range r.Arguments {
		refs = append(refs, arg.ID)
	}
	return refs
}

// Argument returns the id bound to the first argument with the given role
func (r *Relation) Argument(role string) (string, bool) {
	return findArgument(r.Arguments, role)
}

// Attribute is a flag (empty Value) or key/value modifier of another annotation
type Attribute struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	RefID string `json:"ref_id"`
	Value string `json:"value,omitempty"`
}

func (a *Attribute) GetID() string        { return a.ID }
func (a *Attribute) GetType() string      { return a.Type }
func (a *Attribute) Kind() Kind           { return KindAttribute }
func (a *Attribute) References() []string { return []string{a.RefID} }
func (a *Attribute) annotation()          {}

// IsFlag reports whether the attribute carries no value
func (a *Attribute) IsFlag() bool {
	return a.Value == ""
}

// Note is free-text commentary attached to another annotation
type Note struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	RefID string `json:"ref_id"`
	Text  string `json:"text"`
}

func (n *Note) GetID() string        { return n.ID }
func (n *Note) GetType() string      { return n.Type }
func (n *Note) Kind() Kind           { return KindNote }
func (n *Note) References() []string { return []string{n.RefID} }
func (n *Note) annotation()          {}

// EquivalenceGroup declares its member entities mutually equivalent.
// Groups are anonymous, GetID always returns EquivalenceID.
type EquivalenceGroup struct {
	Type    string   `json:"type"`
	Members []string `json:"members"`
}

func (g *EquivalenceGroup) GetID() string   { return EquivalenceID }
func (g *EquivalenceGroup) GetType() string { return g.Type }
func (g *EquivalenceGroup) Kind() Kind      { return KindEquivalenceGroup }
func (g *EquivalenceGroup) annotation()     {}

func (g *EquivalenceGroup) References() []string {
	return append([]string(nil), g.Members...)
}

func findArgument(args []Argument, role string) (string, bool) {
	for _, arg := range args {
		if arg.Role == role {
			return arg.ID, true
		}
	}
	return "", false
}
