// Package parser reads and writes the standoff annotation line format.
//
// Every line holds one record. Fields are separated by tabs, sub-fields by
// spaces, and the first character of the line selects the record grammar:
//
//	T1	Protein 0 5;10 15	TP53 BRCA1
//	E1	Binding:T3 Theme:T1 Theme2:T2
//	R1	Part-of Arg1:T1 Arg2:T2
//	A1	Negation E1
//	M1	Confidence E1 High
//	#1	AnnotatorNotes T1	free text
//	*	Equiv T1 T2
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siherrmann/standoff/model"
)

// ParseLine dispatches the line to the record grammar selected by its first character
func ParseLine(line string) (model.Annotation, error) {
	if line == "" {
		return nil, grammarError(line, "empty line", nil)
	}

	var (
		ann model.Annotation
		err error
	)
	switch line[0] {
	case 'T':
		ann, err = ParseEntity(line)
	case 'E':
		ann, err = ParseEvent(line)
	case 'R':
		ann, err = ParseRelation(line)
	case '#':
		ann, err = ParseNote(line)
	case 'A', 'M':
		ann, err = ParseAttribute(line)
	case '*':
		ann, err = ParseEquivalenceGroup(line)
	default:
		return nil, grammarError(line, "unknown record type", nil)
	}
	if err != nil {
		return nil, err
	}
	return ann, nil
}

// ParseEntity parses `T<n> TAB <type> <b> <e>[;<b> <e>...] TAB <text>`
func ParseEntity(line string) (*model.Entity, error) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return nil, grammarError(line, "entity needs id, type with offsets and text", nil)
	}
	if err := checkID(line, fields[0], "T"); err != nil {
		return nil, err
	}

	typ, offsets, ok := strings.Cut(fields[1], " ")
	if !ok || typ == "" {
		return nil, grammarError(line, "entity has no offsets", nil)
	}

	var spans []model.Span
	for _, pair := range strings.Split(offsets, ";") {
		span, err := parseSpan(line, pair)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}

	return &model.Entity{
		ID:    fields[0],
		Type:  typ,
		Spans: spans,
		Text:  fields[2],
	}, nil
}

// ParseEvent parses `E<n> TAB <type>:<trigger> <role>:<id> ...`
func ParseEvent(line string) (*model.Event, error) {
	id, body, err := splitRecord(line, "E")
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return nil, grammarError(line, "event has no type and trigger", nil)
	}

	trigger, err := parseArgument(line, tokens[0])
	if err != nil {
		return nil, err
	}

	arguments, err := parseArguments(line, tokens[1:])
	if err != nil {
		return nil, err
	}

	return &model.Event{
		ID:        id,
		Type:      trigger.Role,
		TriggerID: trigger.ID,
		Arguments: arguments,
	}, nil
}

// ParseRelation parses `R<n> TAB <type> <role>:<id> ...`
func ParseRelation(line string) (*model.Relation, error) {
	id, body, err := splitRecord(line, "R")
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(body)
	if len(tokens) < 2 {
		return nil, grammarError(line, "relation needs a type and at least one argument", nil)
	}

	arguments, err := parseArguments(line, tokens[1:])
	if err != nil {
		return nil, err
	}

	return &model.Relation{
		ID:        id,
		Type:      tokens[0],
		Arguments: arguments,
	}, nil
}

// ParseAttribute parses `A<n>|M<n> TAB <type> <refId> [<value>]`
func ParseAttribute(line string) (*model.Attribute, error) {
	id, body, err := splitRecord(line, "A", "M")
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(body)
	if len(tokens) != 2 && len(tokens) != 3 {
		return nil, grammarError(line, "attribute needs type, reference and optional value", nil)
	}

	attribute := &model.Attribute{
		ID:    id,
		Type:  tokens[0],
		RefID: tokens[1],
	}
	if len(tokens) == 3 {
		attribute.Value = tokens[2]
	}
	return attribute, nil
}

// ParseNote parses `#<n> TAB <type> <refId> TAB <text>`
func ParseNote(line string) (*model.Note, error) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return nil, grammarError(line, "note needs id, type with reference and text", nil)
	}
	if err := checkID(line, fields[0], "#"); err != nil {
		return nil, err
	}

	tokens := strings.Fields(fields[1])
	if len(tokens) != 2 {
		return nil, grammarError(line, "note needs type and reference", nil)
	}

	return &model.Note{
		ID:    fields[0],
		Type:  tokens[0],
		RefID: tokens[1],
		Text:  fields[2],
	}, nil
}

// ParseEquivalenceGroup parses `* TAB <type> <id> <id> ...`
func ParseEquivalenceGroup(line string) (*model.EquivalenceGroup, error) {
	id, body, err := splitRecord(line, model.EquivalenceID)
	if err != nil {
		return nil, err
	}
	if id != model.EquivalenceID {
		return nil, grammarError(line, "equivalence id must be "+model.EquivalenceID, nil)
	}

	tokens := strings.Fields(body)
	if len(tokens) < 3 {
		return nil, grammarError(line, "equivalence needs a type and at least two members", nil)
	}

	return &model.EquivalenceGroup{
		Type:    tokens[0],
		Members: tokens[1:],
	}, nil
}

// splitRecord splits the two-field records (event, relation, attribute, equivalence).
// A trailing tab, as written by some annotation tools, is tolerated.
func splitRecord(line string, prefixes ...string) (string, string, error) {
	fields := strings.Split(line, "\t")
	if len(fields) == 3 && strings.TrimSpace(fields[2]) == "" {
		fields = fields[:2]
	}
	if len(fields) != 2 {
		return "", "", grammarError(line, fmt.Sprintf("expected 2 tab separated fields, got %d", len(fields)), nil)
	}
	if err := checkID(line, fields[0], prefixes...); err != nil {
		return "", "", err
	}
	return fields[0], fields[1], nil
}

func checkID(line string, id string, prefixes ...string) error {
	if id == "" || strings.ContainsAny(id, " ") {
		return grammarError(line, fmt.Sprintf("invalid id %q", id), nil)
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(id, prefix) {
			if prefix == model.EquivalenceID {
				return nil
			}
			if !isNumber(id[len(prefix):]) {
				return grammarError(line, fmt.Sprintf("id %q needs a number after %q", id, prefix), nil)
			}
			return nil
		}
	}
	return grammarError(line, fmt.Sprintf("id %q must start with one of %v", id, prefixes), nil)
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseSpan(line string, pair string) (model.Span, error) {
	parts := strings.Fields(pair)
	if len(parts) != 2 {
		return model.Span{}, grammarError(line, fmt.Sprintf("offset pair %q needs begin and end", pair), nil)
	}

	begin, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.Span{}, grammarError(line, fmt.Sprintf("invalid begin offset %q", parts[0]), err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.Span{}, grammarError(line, fmt.Sprintf("invalid end offset %q", parts[1]), err)
	}
	if begin < 0 || begin >= end {
		return model.Span{}, grammarError(line, fmt.Sprintf("offset pair %d %d must satisfy 0 <= begin < end", begin, end), nil)
	}

	return model.Span{Begin: begin, End: end}, nil
}

func parseArguments(line string, tokens []string) ([]model.Argument, error) {
	arguments := make([]model.Argument, 0, len(tokens))
	for _, token := range tokens {
		arg, err := parseArgument(line, token)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, arg)
	}
	return arguments, nil
}

// parseArgument splits role:id at the last colon
func parseArgument(line string, token string) (model.Argument, error) {
	i := strings.LastIndex(token, ":")
	if i <= 0 || i == len(token)-1 {
		return model.Argument{}, grammarError(line, fmt.Sprintf("malformed argument %q, expected role:id", token), nil)
	}
	return model.Argument{Role: token[:i], ID: token[i+1:]}, nil
}

func grammarError(line string, message string, err error) *model.GrammarError {
	return &model.GrammarError{
		Line:    line,
		Message: message,
		Err:     err,
	}
}
