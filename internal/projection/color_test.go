package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freedkr/orgchart/internal/model"
)

func TestContrastColor(t *testing.T) {
	tests := []struct {
		background string
		expected   string
	}{
		{"#FFFFFF", TextDark},
		{"#ffffff", TextDark},
		{"#000000", TextLight},
		{"#3182ce", TextLight},
		{"#d69e2e", TextDark},
		// 亮度恰好为 128 时使用浅色文字
		{"#808080", TextLight},
		{"#818181", TextDark},
		{"ffffff", TextDark},
		{"000000", TextLight},
		{" #FFFFFF ", TextDark},
		{"not-a-color", TextLight},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.background, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContrastColor(tt.background))
		})
	}
}

func TestBrightness(t *testing.T) {
	y, ok := Brightness("#ff0000")
	assert.True(t, ok)
	assert.InDelta(t, 76.245, y, 0.001)

	_, ok = Brightness("#zzzzzz")
	assert.False(t, ok)
}

func TestPalettes(t *testing.T) {
	assert.Len(t, DefaultPalette, 12)
	assert.Len(t, PresetColors, 8)
	assert.Equal(t, DefaultPalette[0], PresetColors[0])
}

func TestAssignValueColors(t *testing.T) {
	var records []model.Record
	for _, v := range []string{"b", "a", "", "c", "a"} {
		records = append(records, model.Record{"Dept": v})
	}

	got := AssignValueColors(records, "Dept", map[string]string{"b": "#000000"})

	assert.Equal(t, map[string]string{
		"a": DefaultPalette[0],
		"b": "#000000",
		"c": DefaultPalette[2],
	}, got)
}

func TestAssignValueColors_WrapsPalette(t *testing.T) {
	var records []model.Record
	for i := 0; i < 13; i++ {
		records = append(records, model.Record{"N": i + 10})
	}

	got := AssignValueColors(records, "N", nil)

	assert.Len(t, got, 13)
	// "10" 排第一，"22" 排第十三
	assert.Equal(t, DefaultPalette[0], got["10"])
	assert.Equal(t, DefaultPalette[0], got["22"])
}
