package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/siherrmann/standoff/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadFile(t *testing.T) {
	t.Run("Reads annotations with sibling text", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "PMID-1.ann"), sampleAnnotations)
		writeFile(t, filepath.Join(dir, "PMID-1.txt"), "TP53 and BRCA1")

		doc, err := ReadFile(filepath.Join(dir, "PMID-1.ann"))

		require.NoError(t, err)
		assert.Equal(t, "PMID-1", doc.DocID)
		assert.Equal(t, "TP53 and BRCA1", doc.Text)
		assert.Equal(t, 3, doc.Len())
	})

	t.Run("Missing text file leaves text empty", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "doc.ann"), sampleAnnotations)

		doc, err := ReadFile(filepath.Join(dir, "doc.ann"))

		require.NoError(t, err)
		assert.Equal(t, "", doc.Text)
	})

	t.Run("Missing annotation file fails", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "missing.ann"))

		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("Grammar errors keep their type", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "bad.ann"), "X1\tfoo\n")

		_, err := ReadFile(filepath.Join(dir, "bad.ann"))

		assert.True(t, errors.Is(err, model.ErrGrammar))
		assert.Contains(t, err.Error(), "bad.ann")
	})
}

func TestReadCorpus(t *testing.T) {
	t.Run("Reads all documents sorted by id", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.ann"), sampleAnnotations)
		writeFile(t, filepath.Join(dir, "a.ann"), "T1\tProtein 0 4\tTP53\n")
		writeFile(t, filepath.Join(dir, "a.txt"), "TP53")
		writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

		docs, err := ReadCorpus(context.Background(), dir, 4)

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].DocID)
		assert.Equal(t, "TP53", docs[0].Text)
		assert.Equal(t, "b", docs[1].DocID)
		assert.Equal(t, 3, docs[1].Len())
	})

	t.Run("Empty directory gives no documents", func(t *testing.T) {
		docs, err := ReadCorpus(context.Background(), t.TempDir(), 0)

		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("One broken file fails the corpus", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.ann"), sampleAnnotations)
		writeFile(t, filepath.Join(dir, "b.ann"), "T1\tProtein\tTP53\n")

		docs, err := ReadCorpus(context.Background(), dir, 2)

		assert.Nil(t, docs)
		assert.True(t, errors.Is(err, model.ErrGrammar))
	})

	t.Run("Cancelled context stops reading", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.ann"), sampleAnnotations)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ReadCorpus(ctx, dir, 1)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
