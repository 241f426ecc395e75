package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T) *Document {
	doc := NewDocument("doc1", "TP53 binds BRCA1")
	require.NoError(t, doc.AddAnnotation(&Entity{ID: "T1", Type: "Protein", Spans: []Span{{Begin: 11, End: 16}}, Text: "BRCA1"}))
	require.NoError(t, doc.AddAnnotation(&Entity{ID: "T2", Type: "Protein", Spans: []Span{{Begin: 0, End: 4}}, Text: "TP53"}))
	require.NoError(t, doc.AddAnnotation(&Entity{ID: "T3", Type: "Binding", Spans: []Span{{Begin: 5, End: 10}}, Text: "binds"}))
	require.NoError(t, doc.AddAnnotation(&Event{ID: "E1", Type: "Binding", TriggerID: "T3", Arguments: []Argument{{Role: "Theme", ID: "T1"}, {Role: "Theme2", ID: "T2"}}}))
	require.NoError(t, doc.AddAnnotation(&Relation{ID: "R1", Type: "Interacts", Arguments: []Argument{{Role: "Arg1", ID: "T1"}, {Role: "Arg2", ID: "T2"}}}))
	require.NoError(t, doc.AddAnnotation(&Attribute{ID: "A1", Type: "Negation", RefID: "E1"}))
	require.NoError(t, doc.AddAnnotation(&Attribute{ID: "A2", Type: "Confidence", RefID: "T1", Value: "High"}))
	require.NoError(t, doc.AddAnnotation(&Note{ID: "#1", Type: "AnnotatorNotes", RefID: "T1", Text: "gene symbol"}))
	require.NoError(t, doc.AddAnnotation(&EquivalenceGroup{Type: "Equiv", Members: []string{"T1", "T2"}}))
	return doc
}

func TestNewDocument(t *testing.T) {
	t.Run("Creates empty document with id and text", func(t *testing.T) {
		doc := NewDocument("doc1", "some text")

		assert.Equal(t, "doc1", doc.DocID)
		assert.Equal(t, "some text", doc.Text)
		assert.Equal(t, 0, doc.Len())
		assert.Empty(t, doc.Annotations())
	})

	t.Run("Zero value document accepts annotations", func(t *testing.T) {
		doc := &Document{}

		err := doc.AddAnnotation(&Entity{ID: "T1", Type: "Protein", Spans: []Span{{Begin: 0, End: 1}}})

		require.NoError(t, err)
		assert.True(t, doc.ContainsID("T1"))
	})
}

func TestDocumentAddAnnotation(t *testing.T) {
	t.Run("Rejects duplicate id and leaves document unchanged", func(t *testing.T) {
		doc := NewDocument("doc1", "")
		first := &Entity{ID: "T1", Type: "Protein", Spans: []Span{{Begin: 0, End: 5}}, Text: "TP53"}
		require.NoError(t, doc.AddAnnotation(first))

		err := doc.AddAnnotation(&Entity{ID: "T1", Type: "Gene", Spans: []Span{{Begin: 6, End: 9}}, Text: "ABC"})

		require.Error(t, err)
		var dupErr *DuplicateIDError
		require.True(t, errors.As(err, &dupErr))
		assert.Equal(t, "T1", dupErr.ID)
		assert.True(t, errors.Is(err, ErrDuplicateID))
		assert.Equal(t, 1, doc.Len())

		got, err := doc.GetEntity("T1")
		require.NoError(t, err)
		assert.Same(t, first, got, "Expected first insertion to survive")
	})

	t.Run("Rejects duplicate id across variants", func(t *testing.T) {
		doc := NewDocument("doc1", "")
		require.NoError(t, doc.AddAnnotation(&Attribute{ID: "A1", Type: "Negation", RefID: "E1"}))

		err := doc.AddAnnotation(&Note{ID: "A1", Type: "AnnotatorNotes", RefID: "E1", Text: "x"})

		assert.True(t, errors.Is(err, ErrDuplicateID))
	})

	t.Run("Accepts any number of equivalence groups", func(t *testing.T) {
		doc := NewDocument("doc1", "")

		require.NoError(t, doc.AddAnnotation(&EquivalenceGroup{Type: "Equiv", Members: []string{"T1", "T2"}}))
		require.NoError(t, doc.AddAnnotation(&EquivalenceGroup{Type: "Equiv", Members: []string{"T3", "T4"}}))

		assert.Len(t, doc.GetEquivalenceGroups(), 2)
		assert.False(t, doc.ContainsID(EquivalenceID), "Expected groups to stay anonymous")
	})
}

func TestDocumentLookup(t *testing.T) {
	doc := sampleDocument(t)

	t.Run("GetAnnotation returns every inserted record", func(t *testing.T) {
		for _, ann := range doc.Annotations() {
			if ann.Kind() == KindEquivalenceGroup {
				continue
			}
			got, err := doc.GetAnnotation(ann.GetID())
			require.NoError(t, err)
			assert.Equal(t, ann, got)
		}
	})

	t.Run("GetAnnotation fails with NotFoundError", func(t *testing.T) {
		_, err := doc.GetAnnotation("T99")

		var notFound *NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "T99", notFound.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, doc.ContainsID("T99"))
	})

	t.Run("Typed getters resolve matching variants", func(t *testing.T) {
		entity, err := doc.GetEntity("T2")
		require.NoError(t, err)
		assert.Equal(t, "TP53", entity.Text)

		event, err := doc.GetEvent("E1")
		require.NoError(t, err)
		assert.Equal(t, "T3", event.TriggerID)

		relation, err := doc.GetRelation("R1")
		require.NoError(t, err)
		assert.Equal(t, "Interacts", relation.Type)
	})

	t.Run("Typed getters fail with TypeMismatchError on other variants", func(t *testing.T) {
		_, err := doc.GetEntity("E1")
		var mismatch *TypeMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, KindEntity, mismatch.Expected)
		assert.Equal(t, KindEvent, mismatch.Actual)

		_, err = doc.GetEvent("R1")
		assert.True(t, errors.Is(err, ErrTypeMismatch))

		_, err = doc.GetRelation("T1")
		assert.True(t, errors.Is(err, ErrTypeMismatch))
	})

	t.Run("Typed getters fail with NotFoundError on unknown ids", func(t *testing.T) {
		_, err := doc.GetEvent("E9")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestDocumentViews(t *testing.T) {
	doc := sampleDocument(t)

	t.Run("Typed views keep insertion order", func(t *testing.T) {
		entities := doc.GetEntities()
		require.Len(t, entities, 3)
		assert.Equal(t, "T1", entities[0].ID)
		assert.Equal(t, "T2", entities[1].ID)
		assert.Equal(t, "T3", entities[2].ID)

		assert.Len(t, doc.GetEvents(), 1)
		assert.Len(t, doc.GetRelations(), 1)
		assert.Len(t, doc.GetAttributes(), 2)
		assert.Len(t, doc.GetNotes(), 1)
		assert.Len(t, doc.GetEquivalenceGroups(), 1)
		assert.Equal(t, 9, doc.Len())
	})

	t.Run("Filtered views by reference target", func(t *testing.T) {
		attributes := doc.GetAttributesFor("T1")
		require.Len(t, attributes, 1)
		assert.Equal(t, "A2", attributes[0].ID)

		notes := doc.GetNotesFor("T1")
		require.Len(t, notes, 1)
		assert.Equal(t, "gene symbol", notes[0].Text)

		assert.Empty(t, doc.GetNotesFor("E1"))
		assert.Len(t, doc.GetAttributesFor("E1"), 1)
	})

	t.Run("Annotations returns a copy", func(t *testing.T) {
		all := doc.Annotations()
		all[0] = nil

		assert.NotNil(t, doc.Annotations()[0])
	})
}

func TestDocumentClone(t *testing.T) {
	t.Run("Clone is independent of the source", func(t *testing.T) {
		doc := sampleDocument(t)
		clone := doc.Clone()

		require.NoError(t, clone.AddAnnotation(&Entity{ID: "T9", Type: "Protein", Spans: []Span{{Begin: 0, End: 1}}}))

		assert.True(t, clone.ContainsID("T9"))
		assert.False(t, doc.ContainsID("T9"))
		assert.Equal(t, doc.Len()+1, clone.Len())
		assert.Equal(t, doc.DocID, clone.DocID)
		assert.Equal(t, doc.Text, clone.Text)
	})
}

func TestNewDocumentFromFile(t *testing.T) {
	t.Run("Successfully reads file and creates document", func(t *testing.T) {
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "PMID-1.txt")
		content := "This is test content"
		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err)

		metadata := Metadata{"corpus": "test"}
		doc, err := NewDocumentFromFile(filePath, metadata)

		require.NoError(t, err)
		assert.Equal(t, "PMID-1", doc.DocID, "Document id should be filename without extension")
		assert.Equal(t, content, doc.Text, "Text should match file content")
		assert.Equal(t, "test", doc.Metadata["corpus"])
		assert.Equal(t, 0, doc.Len())
	})

	t.Run("Returns error for non-existent file", func(t *testing.T) {
		doc, err := NewDocumentFromFile("/non/existent/file.txt", nil)

		require.Error(t, err)
		assert.Nil(t, doc)
	})

	t.Run("Handles file with multiple dots in name", func(t *testing.T) {
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "my.file.name.txt")
		err := os.WriteFile(filePath, []byte("content"), 0644)
		require.NoError(t, err)

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, "my.file.name", doc.DocID, "Document id should remove only last extension")
	})
}
