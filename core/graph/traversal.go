// Package graph walks the reference graph spanned by the identifiers of a document.
package graph

import (
	"context"

	"github.com/siherrmann/standoff/model"
)

// Direction selects which side of a reference is followed
type Direction int

const (
	// Incoming follows references pointing at the current record (its dependents)
	Incoming Direction = iota
	// Outgoing follows the references the current record holds
	Outgoing
)

// AnnotationSource is the read side of a document used for traversal
type AnnotationSource interface {
	GetAnnotation(id string) (model.Annotation, error)
	Annotations() []model.Annotation
}

// TraversalResult contains an annotation and its distance from the source
type TraversalResult struct {
	Annotation model.Annotation
	Distance   int
	Path       []string // Ids from source to this annotation
}

// edges resolves the neighbours of an annotation for one direction.
// Equivalence groups are anonymous, so they only ever show up as leaves.
type edges struct {
	source    AnnotationSource
	direction Direction
	incoming  map[string][]model.Annotation
}

func newEdges(source AnnotationSource, direction Direction) *edges {
	e := &edges{source: source, direction: direction}
	if direction == Incoming {
		e.incoming = make(map[string][]model.Annotation)
		for _, ann := range source.Annotations() {
			seen := make(map[string]bool)
			for _, ref := range ann.References() {
				if seen[ref] {
					continue
				}
				seen[ref] = true
				e.incoming[ref] = append(e.incoming[ref], ann)
			}
		}
	}
	return e
}

func (e *edges) from(ann model.Annotation) []model.Annotation {
	if e.direction == Incoming {
		if ann.Kind() == model.KindEquivalenceGroup {
			return nil
		}
		return e.incoming[ann.GetID()]
	}

	var neighbours []model.Annotation
	for _, ref := range ann.References() {
		target, err := e.source.GetAnnotation(ref)
		if err != nil {
			continue // Skip dangling references
		}
		neighbours = append(neighbours, target)
	}
	return neighbours
}

// BFS performs breadth-first search from a source annotation
func BFS(ctx context.Context, source AnnotationSource, sourceID string, maxHops int, direction Direction) ([]*TraversalResult, error) {
	sourceAnnotation, err := source.GetAnnotation(sourceID)
	if err != nil {
		return nil, err
	}

	graph := newEdges(source, direction)
	visited := map[model.Annotation]bool{sourceAnnotation: true}
	queue := []TraversalResult{{
		Annotation: sourceAnnotation,
		Distance:   0,
		Path:       []string{sourceID},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		if current.Distance >= maxHops {
			continue
		}

		for _, target := range graph.from(current.Annotation) {
			if visited[target] {
				continue
			}
			visited[target] = true

			newPath := make([]string, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, target.GetID())

			queue = append(queue, TraversalResult{
				Annotation: target,
				Distance:   current.Distance + 1,
				Path:       newPath,
			})
		}
	}

	return results, nil
}

// DFS performs depth-first search from a source annotation
func DFS(ctx context.Context, source AnnotationSource, sourceID string, maxHops int, direction Direction) ([]*TraversalResult, error) {
	sourceAnnotation, err := source.GetAnnotation(sourceID)
	if err != nil {
		return nil, err
	}

	var results []*TraversalResult
	err = dfsRecursive(ctx, newEdges(source, direction), sourceAnnotation, 0, maxHops, []string{sourceID}, map[model.Annotation]bool{}, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func dfsRecursive(
	ctx context.Context,
	graph *edges,
	current model.Annotation,
	distance int,
	maxHops int,
	path []string,
	visited map[model.Annotation]bool,
	results *[]*TraversalResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	visited[current] = true
	*results = append(*results, &TraversalResult{
		Annotation: current,
		Distance:   distance,
		Path:       path,
	})

	if distance >= maxHops {
		return nil
	}

	for _, target := range graph.from(current) {
		if visited[target] {
			continue
		}

		newPath := make([]string, len(path), len(path)+1)
		copy(newPath, path)
		newPath = append(newPath, target.GetID())

		if err := dfsRecursive(ctx, graph, target, distance+1, maxHops, newPath, visited, results); err != nil {
			return err
		}
	}
	return nil
}

// GetDependents returns the records directly referencing id, in document order.
// These are the records left dangling when id is removed.
func GetDependents(ctx context.Context, source AnnotationSource, id string) ([]model.Annotation, error) {
	results, err := BFS(ctx, source, id, 1, Incoming)
	if err != nil {
		return nil, err
	}

	dependents := make([]model.Annotation, 0, len(results)-1)
	for _, result := range results[1:] {
		dependents = append(dependents, result.Annotation)
	}
	return dependents, nil
}
