package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackParser_ImplementsParser(t *testing.T) {
	var _ Parser = &FallbackParser{}
}

func TestFallbackParser_DetectsEverything(t *testing.T) {
	parser := &FallbackParser{}

	inputs := []string{
		"",
		"ordinary build output",
		"\x00\xff\xfe binary",
		fullReport,
	}
	for _, input := range inputs {
		assert.True(t, parser.Detect(input))
	}
}

func TestFallbackParser_SingleVerbatimSection(t *testing.T) {
	parser := &FallbackParser{}

	input := "line one\nline two\n\nline four"
	sections := parser.Decompose(input)
	require.Len(t, sections, 1)

	raw := sections[0]
	assert.Equal(t, "Raw Log", raw.Title)
	assert.Equal(t, KindTextBlock, raw.Kind)
	assert.Equal(t, 0, raw.Order)
	assert.Equal(t, input, raw.Text())
}

func TestFallbackParser_EmptyInput(t *testing.T) {
	parser := &FallbackParser{}

	sections := parser.Decompose("")
	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].Text())
	assert.NotNil(t, sections[0].Rows)
}
