package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
)

// DefaultEntityExtractor creates an entity extractor using a NER model
// Uses distilbert-NER for named entity recognition
// Detects: PER, ORG, LOC, MISC entities
func DefaultEntityExtractor() (EntityExtractFunc, error) {
	// Prepare model (download if needed)
	// Using KnightsAnalytics optimized distilbert-NER model
	modelName := "KnightsAnalytics/distilbert-NER"
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create token classification pipeline for NER
	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}), // Ignore non-entity tokens
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(text string) ([]*model.Entity, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}

		// Run NER on the text
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}

		if len(result.Entities) == 0 {
			return nil, nil
		}

		// Convert NER results to model.Entity
		var entities []*model.Entity
		for _, detected := range result.Entities[0] {
			// Normalize entity type (remove B- and I- prefixes)
			entity, ok := entityFromOffsets(text, normalizeEntityType(detected.Entity), int(detected.Start), int(detected.End))
			if !ok {
				continue
			}
			entities = append(entities, entity)
		}

		return entities, nil
	}, nil
}

// entityFromOffsets builds an id-less entity from byte offsets into text.
// Surrounding whitespace is trimmed from the span, offsets become character offsets.
// A span crossing a line break is split into one fragment per line, the
// entity text joins the fragments with a space.
func entityFromOffsets(text string, entityType string, start int, end int) (*model.Entity, bool) {
	if start < 0 || end > len(text) || start >= end {
		return nil, false
	}

	var spans []model.Span
	var fragments []string
	lineStart := start
	for i := start; i <= end; i++ {
		if i < end && text[i] != '\n' && text[i] != '\r' {
			continue
		}

		line := text[lineStart:i]
		trimmed := strings.TrimLeft(line, " \t")
		fragmentStart := lineStart + len(line) - len(trimmed)
		fragment := strings.TrimRight(trimmed, " \t")
		if fragment != "" {
			begin := utf8.RuneCountInString(text[:fragmentStart])
			spans = append(spans, model.Span{Begin: begin, End: begin + utf8.RuneCountInString(fragment)})
			fragments = append(fragments, fragment)
		}
		lineStart = i + 1
	}
	if len(spans) == 0 {
		return nil, false
	}

	return &model.Entity{
		Type:  entityType,
		Spans: spans,
		Text:  strings.Join(fragments, " "),
	}, true
}

// normalizeEntityType removes B- and I- prefixes from NER labels
func normalizeEntityType(label string) string {
	// Remove BIO tagging prefixes (B- for beginning, I- for inside)
	if strings.HasPrefix(label, "B-") {
		return label[2:]
	}
	if strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
