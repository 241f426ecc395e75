// Package validate checks the referential integrity of a document.
package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/siherrmann/standoff/model"
)

// SpanError reports an entity span outside of the document text
type SpanError struct {
	ID         string
	Span       model.Span
	TextLength int
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%s span %d %d exceeds text length %d", e.ID, e.Span.Begin, e.Span.End, e.TextLength)
}

// Validate returns every integrity problem of doc as one multierror, or nil.
// Triggers and equivalence members must resolve to entities, all other
// references to any record. Spans are checked only when the document has text.
// Members of the result are *model.NotFoundError, *model.TypeMismatchError or *SpanError.
func Validate(doc *model.Document) error {
	var result *multierror.Error

	textLength := utf8.RuneCountInString(doc.Text)

	for _, ann := range doc.Annotations() {
		switch a := ann.(type) {
		case *model.Entity:
			if doc.Text == "" {
				continue
			}
			for _, span := range a.Spans {
				if span.End > textLength {
					result = multierror.Append(result, &SpanError{ID: a.ID, Span: span, TextLength: textLength})
				}
			}
		case *model.Event:
			if err := checkEntity(doc, a.ID, a.TriggerID); err != nil {
				result = multierror.Append(result, err)
			}
			for _, arg := range a.Arguments {
				if err := checkAny(doc, a.ID, arg.ID); err != nil {
					result = multierror.Append(result, err)
				}
			}
		case *model.EquivalenceGroup:
			for _, member := range a.Members {
				if err := checkEntity(doc, model.EquivalenceID, member); err != nil {
					result = multierror.Append(result, err)
				}
			}
		default:
			for _, ref := range ann.References() {
				if err := checkAny(doc, ann.GetID(), ref); err != nil {
					result = multierror.Append(result, err)
				}
			}
		}
	}

	return result.ErrorOrNil()
}

// Problems flattens the error returned by Validate
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		return merr.WrappedErrors()
	}
	return []error{err}
}

func checkEntity(doc *model.Document, referrer string, id string) error {
	ann, err := doc.GetAnnotation(id)
	if err != nil {
		return &model.NotFoundError{ID: id, Referrer: referrer}
	}
	if ann.Kind() != model.KindEntity {
		return &model.TypeMismatchError{ID: id, Expected: model.KindEntity, Actual: ann.Kind()}
	}
	return nil
}

func checkAny(doc *model.Document, referrer string, id string) error {
	if !doc.ContainsID(id) {
		return &model.NotFoundError{ID: id, Referrer: referrer}
	}
	return nil
}
