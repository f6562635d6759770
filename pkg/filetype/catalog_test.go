package filetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	require.Greater(t, exts.Len(), 100)

	assert.True(t, exts.Contains("png"))
	assert.True(t, exts.Contains("docx"))
	assert.True(t, exts.Contains("Z")) // case-sensitive by contract
	assert.False(t, exts.Contains("z"))
	assert.False(t, exts.Contains("txt"))
}

func TestSupportedMIMETypes(t *testing.T) {
	mimes := SupportedMIMETypes()
	require.Greater(t, mimes.Len(), 100)

	assert.True(t, mimes.Contains("image/png"))
	assert.True(t, mimes.Contains("application/zip"))
	assert.False(t, mimes.Contains("text/plain"))
}

func TestCatalogOrderStable(t *testing.T) {
	first := SupportedExtensions().List()
	second := SupportedExtensions().List()
	assert.Equal(t, first, second)

	// The list is a copy: mutating it must not affect the catalog
	first[0] = "mutated"
	assert.NotEqual(t, first[0], SupportedExtensions().List()[0])
}

func TestCatalogHasNoDuplicates(t *testing.T) {
	for _, list := range [][]string{SupportedExtensions().List(), SupportedMIMETypes().List()} {
		seen := make(map[string]struct{}, len(list))
		for _, v := range list {
			_, dup := seen[v]
			assert.False(t, dup, "duplicate entry %q", v)
			seen[v] = struct{}{}
		}
	}
}
