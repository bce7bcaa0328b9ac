package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_NullVersusAbsent(t *testing.T) {
	doc := NewDocument()
	doc.SetNull("cleared")

	assert.True(t, doc.Has("cleared"))
	assert.True(t, doc.IsNull("cleared"))
	assert.False(t, doc.Has("missing"))
	assert.False(t, doc.IsNull("missing"))

	var s string
	found, err := doc.Get("cleared", &s)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDocument_GetDecodeError(t *testing.T) {
	doc, err := parseDocument([]byte(`{"n":"text"}`))
	require.NoError(t, err)

	var n int
	_, err = doc.Get("n", &n)
	require.Error(t, err)
}

func TestDocument_KeysSortedAndDelete(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.Set("b", 1))
	require.NoError(t, doc.Set("a", 2))
	doc.SetNull("c")
	doc.Delete("b")

	assert.Equal(t, []string{"a", "c"}, doc.Keys())
}

func TestParseDocument_EmptyAndNull(t *testing.T) {
	for _, in := range []string{"", "  \n", "null"} {
		doc, err := parseDocument([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, 0, doc.Len())
	}

	_, err := parseDocument([]byte(`[1,2]`))
	require.Error(t, err)
}

func TestDocument_RawKeepsValue(t *testing.T) {
	doc, err := parseDocument([]byte(`{"x":{"k":[1,2]}}`))
	require.NoError(t, err)

	raw, ok := doc.Raw("x")
	require.True(t, ok)
	assert.JSONEq(t, `{"k":[1,2]}`, string(raw))
}
