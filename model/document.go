package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document owns the annotation records of one source text.
// Records keep their insertion order. Every identified record has a unique id,
// equivalence groups are anonymous and never take part in the uniqueness check.
// A Document is not safe for concurrent mutation.
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	DocID     string    `json:"doc_id"`
	Text      string    `json:"text,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	annotations []Annotation
	index       map[string]int
}

// NewDocument creates an empty document with the given id and raw text
func NewDocument(docID string, text string) *Document {
	return &Document{
		DocID: docID,
		Text:  text,
		index: make(map[string]int),
	}
}

// NewDocumentFromFile reads a raw text file and creates an empty Document with it.
// The document id defaults to the filename without extension.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	docID := strings.TrimSuffix(filename, filepath.Ext(filename))
	if docID == "" {
		docID = filename
	}

	doc := NewDocument(docID, string(content))
	doc.Metadata = metadata
	return doc, nil
}

// Clone returns a copy sharing the (immutable) records but not the storage
func (d *Document) Clone() *Document {
	clone := NewDocument(d.DocID, d.Text)
	clone.ID = d.ID
	clone.RID = d.RID
	clone.Metadata = d.Metadata
	clone.CreatedAt = d.CreatedAt
	clone.UpdatedAt = d.UpdatedAt
	clone.annotations = append(clone.annotations, d.annotations...)
	for id, i := range d.index {
		clone.index[id] = i
	}
	return clone
}

// AddAnnotation appends a record. It fails with a DuplicateIDError, leaving the
// document unchanged, if an identified record with the same id exists.
func (d *Document) AddAnnotation(ann Annotation) error {
	if d.index == nil {
		d.index = make(map[string]int)
	}

	if ann.Kind() != KindEquivalenceGroup {
		id := ann.GetID()
		if _, ok := d.index[id]; ok {
			return &DuplicateIDError{ID: id}
		}
		d.index[id] = len(d.annotations)
	}

	d.annotations = append(d.annotations, ann)
	return nil
}

// ContainsID reports whether an identified record with the id exists
func (d *Document) ContainsID(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Len returns the number of records including equivalence groups
func (d *Document) Len() int {
	return len(d.annotations)
}

// Annotations returns all records in insertion order
func (d *Document) Annotations() []Annotation {
	return append([]Annotation(nil), d.annotations...)
}

// GetAnnotation returns the record with the given id
func (d *Document) GetAnnotation(id string) (Annotation, error) {
	i, ok := d.index[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return d.annotations[i], nil
}

// GetEntity returns the entity with the given id
func (d *Document) GetEntity(id string) (*Entity, error) {
	ann, err := d.GetAnnotation(id)
	if err != nil {
		return nil, err
	}
	entity, ok := ann.(*Entity)
	if !ok {
		return nil, &TypeMismatchError{ID: id, Expected: KindEntity, Actual: ann.Kind()}
	}
	return entity, nil
}

// GetEvent returns the event with the given id
func (d *Document) GetEvent(id string) (*Event, error) {
	ann, err := d.GetAnnotation(id)
	if err != nil {
		return nil, err
	}
	event, ok := ann.(*Event)
	if !ok {
		return nil, &TypeMismatchError{ID: id, Expected: KindEvent, Actual: ann.Kind()}
	}
	return event, nil
}

// GetRelation returns the relation with the given id
func (d *Document) GetRelation(id string) (*Relation, error) {
	ann, err := d.GetAnnotation(id)
	if err != nil {
		return nil, err
	}
	relation, ok := ann.(*Relation)
	if !ok {
		return nil, &TypeMismatchError{ID: id, Expected: KindRelation, Actual: ann.Kind()}
	}
	return relation, nil
}

// GetEntities returns all entities in insertion order
func (d *Document) GetEntities() []*Entity {
	return collect[*Entity](d.annotations)
}

// GetEvents returns all events in insertion order
func (d *Document) GetEvents() []*Event {
	return collect[*Event](d.annotations)
}

// GetRelations returns all relations in insertion order
func (d *Document) GetRelations() []*Relation {
	return collect[*Relation](d.annotations)
}

// GetAttributes returns all attributes in insertion order
func (d *Document) GetAttributes() []*Attribute {
	return collect[*Attribute](d.annotations)
}

// GetNotes returns all notes in insertion order
func (d *Document) GetNotes() []*Note {
	return collect[*Note](d.annotations)
}

// GetEquivalenceGroups returns all equivalence groups in insertion order
func (d *Document) GetEquivalenceGroups() []*EquivalenceGroup {
	return collect[*EquivalenceGroup](d.annotations)
}

// GetNotesFor returns the notes attached to refID
func (d *Document) GetNotesFor(refID string) []*Note {
	var notes []*Note
	for _, n := range d.GetNotes() {
		if n.RefID == refID {
			notes = append(notes, n)
		}
	}
	return notes
}

// GetAttributesFor returns the attributes attached to refID
func (d *Document) GetAttributesFor(refID string) []*Attribute {
	var attributes []*Attribute
	for _, a := range d.GetAttributes() {
		if a.RefID == refID {
			attributes = append(attributes, a)
		}
	}
	return attributes
}

func collect[T Annotation](annotations []Annotation) []T {
	var out []T
	for _, ann := range annotations {
		if v, ok := ann.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
