package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siherrmann/standoff/model"
)

// FormatAnnotation writes a record back into its line grammar, without newline
func FormatAnnotation(ann model.Annotation) string {
	var b strings.Builder

	switch a := ann.(type) {
	case *model.Entity:
		b.WriteString(a.ID)
		b.WriteByte('\t')
		b.WriteString(a.Type)
		b.WriteByte(' ')
		for i, span := range a.Spans {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(strconv.Itoa(span.Begin))
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(span.End))
		}
		b.WriteByte('\t')
		b.WriteString(a.Text)
	case *model.Event:
		b.WriteString(a.ID)
		b.WriteByte('\t')
		b.WriteString(a.Type)
		b.WriteByte(':')
		b.WriteString(a.TriggerID)
		writeArguments(&b, a.Arguments)
	case *model.Relation:
		b.WriteString(a.ID)
		b.WriteByte('\t')
		b.WriteString(a.Type)
		writeArguments(&b, a.Arguments)
	case *model.Attribute:
		b.WriteString(a.ID)
		b.WriteByte('\t')
		b.WriteString(a.Type)
		b.WriteByte(' ')
		b.WriteString(a.RefID)
		if a.Value != "" {
			b.WriteByte(' ')
			b.WriteString(a.Value)
		}
	case *model.Note:
		b.WriteString(a.ID)
		b.WriteByte('\t')
		b.WriteString(a.Type)
		b.WriteByte(' ')
		b.WriteString(a.RefID)
		b.WriteByte('\t')
		b.WriteString(a.Text)
	case *model.EquivalenceGroup:
		b.WriteString(model.EquivalenceID)
		b.WriteByte('\t')
		b.WriteString(a.Type)
		for _, member := range a.Members {
			b.WriteByte(' ')
			b.WriteString(member)
		}
	default:
		panic(fmt.Sprintf("unknown annotation %T", ann))
	}

	return b.String()
}

// CheckAnnotation reports a GrammarError when a field of ann would break the
// line grammar once formatted: separators in ids, types, references or
// values, and line breaks in entity or note text.
func CheckAnnotation(ann model.Annotation) error {
	tokens := []string{ann.GetID(), ann.GetType()}
	var text string

	switch a := ann.(type) {
	case *model.Entity:
		text = a.Text
	case *model.Event:
		tokens = append(tokens, a.TriggerID)
		tokens = appendArguments(tokens, a.Arguments)
	case *model.Relation:
		tokens = appendArguments(tokens, a.Arguments)
	case *model.Attribute:
		tokens = append(tokens, a.RefID, a.Value)
	case *model.Note:
		tokens = append(tokens, a.RefID)
		text = a.Text
	case *model.EquivalenceGroup:
		tokens = append(tokens, a.Members...)
	}

	for _, token := range tokens {
		if strings.ContainsAny(token, " \t\n\r") {
			return grammarError(FormatAnnotation(ann), fmt.Sprintf("field %q contains a separator", token), nil)
		}
	}
	if strings.ContainsAny(text, "\n\r") {
		return grammarError(FormatAnnotation(ann), "text contains a line break", nil)
	}
	return nil
}

func appendArguments(tokens []string, arguments []model.Argument) []string {
	for _, arg := range arguments {
		tokens = append(tokens, arg.Role, arg.ID)
	}
	return tokens
}

func writeArguments(b *strings.Builder, arguments []model.Argument) {
	for _, arg := range arguments {
		b.WriteByte(' ')
		b.WriteString(arg.Role)
		b.WriteByte(':')
		b.WriteString(arg.ID)
	}
}
