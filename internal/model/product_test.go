package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDimensionsComponents(t *testing.T) {
	tests := []struct {
		name       string
		dimensions string
		width      string
		height     string
		depth      string
	}{
		{"lowercase separator", "10x20x30", "10", "20", "30"},
		{"multiplication sign separator", "10×20×30", "10", "20", "30"},
		{"mixed separators", "10x20×30", "10", "20", "30"},
		{"garbage", "garbage", "", "", ""},
		{"empty", "", "", "", ""},
		{"too few components", "10x20", "", "", ""},
		{"too many components", "10x20x30x40", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Dimensions: tt.dimensions}
			width, height, depth := p.DimensionsComponents()
			assert.Equal(t, tt.width, width)
			assert.Equal(t, tt.height, height)
			assert.Equal(t, tt.depth, depth)
		})
	}
}

func TestStringListRoundTrip(t *testing.T) {
	list := StringList{"ProductImages/a_1.jpg", "sidestore:ProductImages_a_2"}

	value, err := list.Value()
	assert.NoError(t, err)

	var decoded StringList
	assert.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)
}

func TestStringListScanMalformed(t *testing.T) {
	var decoded StringList
	assert.NoError(t, decoded.Scan("not json"))
	assert.Empty(t, decoded)
}
