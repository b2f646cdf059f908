package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantResultField(t *testing.T) {
	assert.Equal(t, "organic", VariantWeb.ResultField())
	assert.Equal(t, "news", VariantNews.ResultField())
}

func TestVariantString(t *testing.T) {
	assert.Equal(t, "web", VariantWeb.String())
	assert.Equal(t, "news", VariantNews.String())
	assert.Equal(t, "variant(7)", Variant(7).String())
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("news")
	require.NoError(t, err)
	assert.Equal(t, VariantNews, v)

	v, err = ParseVariant("web")
	require.NoError(t, err)
	assert.Equal(t, VariantWeb, v)

	_, err = ParseVariant("images")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
