package pipeline

import (
	"github.com/siherrmann/standoff/model"
)

// CoOccurrenceRelationType is the relation type written by CoOccurrenceRelationExtractor
const CoOccurrenceRelationType = "Co-occurrence"

// CoOccurrenceRelationExtractor relates every pair of entities whose
// begin offsets are less than maxDistance characters apart.
// Relations use the roles Arg1 and Arg2 in entity order and carry no id.
func CoOccurrenceRelationExtractor(maxDistance int) RelationExtractFunc {
	return func(text string, entities []*model.Entity) ([]*model.Relation, error) {
		var relations []*model.Relation
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				first, second := entities[i], entities[j]
				if first.Begin() < 0 || second.Begin() < 0 {
					continue
				}

				distance := second.Begin() - first.Begin()
				if distance < 0 {
					distance = -distance
				}
				if distance >= maxDistance {
					continue
				}

				relations = append(relations, &model.Relation{
					Type: CoOccurrenceRelationType,
					Arguments: []model.Argument{
						{Role: "Arg1", ID: first.ID},
						{Role: "Arg2", ID: second.ID},
					},
				})
			}
		}
		return relations, nil
	}
}
