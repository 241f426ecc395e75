package pipeline

import (
	"testing"

	"github.com/siherrmann/standoff/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEntityExtractor(t *testing.T) {
	if testing.Short() {
		t.Skip("downloads the distilbert-NER model")
	}

	extractor, err := DefaultEntityExtractor()
	require.NoError(t, err)
	require.NotNil(t, extractor)

	t.Run("Extract entities from text", func(t *testing.T) {
		text := "My name is Wolfgang and I live in Berlin."
		entities, err := extractor(text)
		assert.NoError(t, err)

		for _, entity := range entities {
			t.Logf("  - %s (%s): %v", entity.Text, entity.Type, entity.Spans)
			require.Len(t, entity.Spans, 1)
			assert.Empty(t, entity.ID, "Expected ids to be assigned by the pipeline")
			assert.Equal(t, entity.Text, text[entity.Spans[0].Begin:entity.Spans[0].End])
		}
	})

	t.Run("Handle empty text", func(t *testing.T) {
		entities, err := extractor("")
		assert.NoError(t, err)
		assert.Empty(t, entities)
	})
}

func TestEntityFromOffsets(t *testing.T) {
	t.Run("Plain offsets", func(t *testing.T) {
		entity, ok := entityFromOffsets("I live in Berlin.", "LOC", 10, 16)

		require.True(t, ok)
		assert.Equal(t, "LOC", entity.Type)
		assert.Equal(t, "Berlin", entity.Text)
		assert.Equal(t, []model.Span{{Begin: 10, End: 16}}, entity.Spans)
	})

	t.Run("Whitespace is trimmed from the span", func(t *testing.T) {
		entity, ok := entityFromOffsets("I live in Berlin.", "LOC", 9, 16)

		require.True(t, ok)
		assert.Equal(t, "Berlin", entity.Text)
		assert.Equal(t, []model.Span{{Begin: 10, End: 16}}, entity.Spans)
	})

	t.Run("Byte offsets become character offsets", func(t *testing.T) {
		text := "Grüße aus München"
		start := len("Grüße aus ")

		entity, ok := entityFromOffsets(text, "LOC", start, len(text))

		require.True(t, ok)
		assert.Equal(t, "München", entity.Text)
		assert.Equal(t, []model.Span{{Begin: 10, End: 17}}, entity.Spans)
	})

	t.Run("Line break splits the span into fragments", func(t *testing.T) {
		entity, ok := entityFromOffsets("Visit New\nYork today", "LOC", 6, 14)

		require.True(t, ok)
		assert.Equal(t, "New York", entity.Text)
		assert.Equal(t, []model.Span{{Begin: 6, End: 9}, {Begin: 10, End: 14}}, entity.Spans)
	})

	t.Run("Blank lines inside the span are dropped", func(t *testing.T) {
		entity, ok := entityFromOffsets("Grüße aus\r\n  \nMünchen ", "LOC", 0, len("Grüße aus\r\n  \nMünchen "))

		require.True(t, ok)
		assert.Equal(t, "Grüße aus München", entity.Text)
		assert.Equal(t, []model.Span{{Begin: 0, End: 9}, {Begin: 14, End: 21}}, entity.Spans)
	})

	t.Run("Out of range offsets are rejected", func(t *testing.T) {
		_, ok := entityFromOffsets("short", "LOC", 2, 10)
		assert.False(t, ok)

		_, ok = entityFromOffsets("short", "LOC", 3, 3)
		assert.False(t, ok)

		_, ok = entityFromOffsets("a   b", "LOC", 1, 4)
		assert.False(t, ok, "Expected whitespace-only span to be rejected")

		_, ok = entityFromOffsets("a \n b", "LOC", 1, 4)
		assert.False(t, ok, "Expected line break only span to be rejected")
	})
}

func TestNormalizeEntityType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"B-PER", "PER"},
		{"I-PER", "PER"},
		{"B-LOC", "LOC"},
		{"I-ORG", "ORG"},
		{"MISC", "MISC"},
		{"O", "O"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeEntityType(tt.input))
		})
	}
}
