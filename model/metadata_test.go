package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	t.Run("Value encodes JSON for the database", func(t *testing.T) {
		m := Metadata{"annotator": "alice", "round": 2}

		value, err := m.Value()

		require.NoError(t, err)
		assert.JSONEq(t, `{"annotator":"alice","round":2}`, string(value.([]byte)))
	})

	t.Run("Nil metadata encodes as null", func(t *testing.T) {
		var m Metadata

		bytes, err := m.Marshal()

		require.NoError(t, err)
		assert.Equal(t, "null", string(bytes))
	})

	t.Run("Scan decodes JSON bytes", func(t *testing.T) {
		var m Metadata

		err := m.Scan([]byte(`{"annotator":"bob","reviewed":true,"tags":["ner"]}`))

		require.NoError(t, err)
		assert.Equal(t, "bob", m["annotator"])
		assert.Equal(t, true, m["reviewed"])
		assert.Equal(t, []interface{}{"ner"}, m["tags"])
	})

	t.Run("Scan of NULL yields empty metadata", func(t *testing.T) {
		var m Metadata

		require.NoError(t, m.Scan(nil))
		assert.NotNil(t, m)
		assert.Empty(t, m)
	})

	t.Run("Scan accepts Metadata", func(t *testing.T) {
		var m Metadata

		require.NoError(t, m.Scan(Metadata{"source": "corpus"}))
		assert.Equal(t, "corpus", m["source"])
	})

	t.Run("Scan rejects other types", func(t *testing.T) {
		var m Metadata

		err := m.Scan("not bytes")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "type assertion")
	})

	t.Run("Scan rejects malformed JSON", func(t *testing.T) {
		var m Metadata

		assert.Error(t, m.Scan([]byte(`{annotator}`)))
	})

	t.Run("Value then Scan keeps numbers as float64", func(t *testing.T) {
		value, err := Metadata{"round": 3}.Value()
		require.NoError(t, err)

		var restored Metadata
		require.NoError(t, restored.Scan(value))
		assert.Equal(t, float64(3), restored["round"])
	})
}
