package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayNilStaysNull(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var out StringArray
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}

func TestStringArrayScanLegacyBareURL(t *testing.T) {
	// Rows written before the JSON-array format held a single bare URL.
	var a StringArray
	require.NoError(t, a.Scan("/files/legacy.pdf"))
	assert.Equal(t, StringArray{"/files/legacy.pdf"}, a)
}

func TestStringArrayRoundTrip(t *testing.T) {
	v, err := StringArray{"/files/a.pdf", "/files/b.png"}.Value()
	require.NoError(t, err)

	var out StringArray
	require.NoError(t, out.Scan(v))
	assert.Equal(t, StringArray{"/files/a.pdf", "/files/b.png"}, out)
}
