// Package remap renumbers the entities of a document by text position and
// rewrites every reference to them.
package remap

import (
	"fmt"
	"sort"

	"github.com/siherrmann/standoff/model"
)

// EntityPrefix is the id prefix of renumbered entities
const EntityPrefix = "T"

// Options configures ReorderEntities
type Options struct {
	// KeepAttributeRefs leaves attribute references untouched, which matches
	// tools that never remapped attributes. Attributes pointing at entities
	// then point at whatever entity now carries the old id.
	KeepAttributeRefs bool
	// FirstIndex is the number of the first entity, T0 by default.
	FirstIndex int
}

// DefaultOptions returns the options used by Reorder
func DefaultOptions() Options {
	return Options{
		KeepAttributeRefs: false,
		FirstIndex:        0,
	}
}

// Reorder is ReorderEntities with DefaultOptions
func Reorder(doc *model.Document) (*model.Document, error) {
	return ReorderEntities(doc, DefaultOptions())
}

// ReorderEntities returns a new document whose entities are numbered T0, T1, ...
// in ascending order of their first begin offset. Entities sharing a begin offset
// keep their relative order. Every other record is rebuilt with references to
// entities translated. The source document is not modified.
//
// Event triggers and equivalence members must be entities. Other references may
// point at any record of the document, non-entity ids are kept as is. A reference
// that cannot be resolved fails with a NotFoundError.
func ReorderEntities(doc *model.Document, opts Options) (*model.Document, error) {
	entities := doc.GetEntities()
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Begin() < entities[j].Begin()
	})

	mapping := make(map[string]string, len(entities))
	out := model.NewDocument(doc.DocID, doc.Text)
	out.ID = doc.ID
	out.RID = doc.RID
	out.Metadata = doc.Metadata

	for i, entity := range entities {
		newID := fmt.Sprintf("%s%d", EntityPrefix, opts.FirstIndex+i)
		mapping[entity.ID] = newID

		err := out.AddAnnotation(&model.Entity{
			ID:    newID,
			Type:  entity.Type,
			Spans: append([]model.Span(nil), entity.Spans...),
			Text:  entity.Text,
		})
		if err != nil {
			return nil, err
		}
	}

	m := &mapper{doc: doc, mapping: mapping}

	for _, ann := range doc.Annotations() {
		var rebuilt model.Annotation

		switch a := ann.(type) {
		case *model.Entity:
			continue
		case *model.Event:
			trigger, err := m.entity(a.ID, a.TriggerID)
			if err != nil {
				return nil, err
			}
			arguments, err := m.arguments(a.ID, a.Arguments)
			if err != nil {
				return nil, err
			}
			rebuilt = &model.Event{ID: a.ID, Type: a.Type, TriggerID: trigger, Arguments: arguments}
		case *model.Relation:
			arguments, err := m.arguments(a.ID, a.Arguments)
			if err != nil {
				return nil, err
			}
			rebuilt = &model.Relation{ID: a.ID, Type: a.Type, Arguments: arguments}
		case *model.EquivalenceGroup:
			members := make([]string, 0, len(a.Members))
			for _, member := range a.Members {
				id, err := m.entity(model.EquivalenceID, member)
				if err != nil {
					return nil, err
				}
				members = append(members, id)
			}
			rebuilt = &model.EquivalenceGroup{Type: a.Type, Members: members}
		case *model.Note:
			ref, err := m.any(a.ID, a.RefID)
			if err != nil {
				return nil, err
			}
			rebuilt = &model.Note{ID: a.ID, Type: a.Type, RefID: ref, Text: a.Text}
		case *model.Attribute:
			ref := a.RefID
			if !opts.KeepAttributeRefs {
				var err error
				ref, err = m.any(a.ID, a.RefID)
				if err != nil {
					return nil, err
				}
			}
			rebuilt = &model.Attribute{ID: a.ID, Type: a.Type, RefID: ref, Value: a.Value}
		default:
			return nil, fmt.Errorf("unknown annotation %T", ann)
		}

		if err := out.AddAnnotation(rebuilt); err != nil {
			return nil, err
		}
	}

	return out, nil
}

type mapper struct {
	doc     *model.Document
	mapping map[string]string
}

// entity translates a reference that must point at an entity
func (m *mapper) entity(referrer string, id string) (string, error) {
	newID, ok := m.mapping[id]
	if !ok {
		return "", &model.NotFoundError{ID: id, Referrer: referrer}
	}
	return newID, nil
}

// any translates entity references and keeps references to other records
func (m *mapper) any(referrer string, id string) (string, error) {
	if newID, ok := m.mapping[id]; ok {
		return newID, nil
	}
	if m.doc.ContainsID(id) {
		return id, nil
	}
	return "", &model.NotFoundError{ID: id, Referrer: referrer}
}

func (m *mapper) arguments(referrer string, arguments []model.Argument) ([]model.Argument, error) {
	out := make([]model.Argument, 0, len(arguments))
	for _, arg := range arguments {
		id, err := m.any(referrer, arg.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Argument{Role: arg.Role, ID: id})
	}
	return out, nil
}
