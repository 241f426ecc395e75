package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
)

// EntityExtractFunc extracts entities from text
// Returned entities carry type, spans and surface text, ids are assigned by the pipeline.
type EntityExtractFunc func(text string) ([]*model.Entity, error)

// RelationExtractFunc extracts relations between already identified entities
// Returned relations reference entity ids, their own ids are assigned by the pipeline.
type RelationExtractFunc func(text string, entities []*model.Entity) ([]*model.Relation, error)

// Pipeline pre-annotates documents with machine detected records
type Pipeline struct {
	EntityExtractor   EntityExtractFunc
	RelationExtractor RelationExtractFunc // Optional
}

// NewPipeline creates a new pre-annotation pipeline
func NewPipeline(entityExtractor EntityExtractFunc) *Pipeline {
	return &Pipeline{
		EntityExtractor: entityExtractor,
	}
}

// SetRelationExtractor sets the relation extraction function
func (p *Pipeline) SetRelationExtractor(extractor RelationExtractFunc) {
	p.RelationExtractor = extractor
}

// Annotate runs the extractors over doc.Text and adds the results to doc.
// Entities already present with the same type and spans are skipped.
// New records get the next free T<n> and R<n> ids. Returns the number of added records.
func (p *Pipeline) Annotate(doc *model.Document) (int, error) {
	if p.EntityExtractor == nil {
		return 0, helper.NewError("annotate", fmt.Errorf("pipeline has no entity extractor"))
	}

	entities, err := p.EntityExtractor(doc.Text)
	if err != nil {
		return 0, helper.NewError("extract entities", err)
	}

	existing := make(map[string]bool)
	for _, entity := range doc.GetEntities() {
		existing[entityKey(entity)] = true
	}

	added := 0
	nextEntity := nextIndex(doc, "T")
	var newEntities []*model.Entity
	for _, entity := range entities {
		if entity == nil || existing[entityKey(entity)] {
			continue
		}
		existing[entityKey(entity)] = true

		entity.ID = "T" + strconv.Itoa(nextEntity)
		nextEntity++
		if err := doc.AddAnnotation(entity); err != nil {
			return added, helper.NewError("add entity", err)
		}
		newEntities = append(newEntities, entity)
		added++
	}

	if p.RelationExtractor == nil || len(newEntities) == 0 {
		return added, nil
	}

	relations, err := p.RelationExtractor(doc.Text, newEntities)
	if err != nil {
		return added, helper.NewError("extract relations", err)
	}

	nextRelation := nextIndex(doc, "R")
	for _, relation := range relations {
		relation.ID = "R" + strconv.Itoa(nextRelation)
		nextRelation++
		if err := doc.AddAnnotation(relation); err != nil {
			return added, helper.NewError("add relation", err)
		}
		added++
	}

	return added, nil
}

// nextIndex returns one more than the highest numeric suffix in use for prefix
func nextIndex(doc *model.Document, prefix string) int {
	next := 1
	for _, ann := range doc.Annotations() {
		suffix, ok := strings.CutPrefix(ann.GetID(), prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return next
}

func entityKey(entity *model.Entity) string {
	var b strings.Builder
	b.WriteString(entity.Type)
	for _, span := range entity.Spans {
		fmt.Fprintf(&b, " %d %d", span.Begin, span.End)
	}
	return b.String()
}
