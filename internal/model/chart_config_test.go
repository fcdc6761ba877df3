package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChartConfig(t *testing.T) {
	cfg := DefaultChartConfig(NewColumnSet("Position", "Manager", "Name", "Dept"))

	assert.Equal(t, "Position", cfg.PositionColumn)
	assert.Equal(t, "Manager", cfg.ManagerColumn)
	assert.Equal(t, []string{"Name", "Dept"}, cfg.DisplayColumns)

	single := DefaultChartConfig(NewColumnSet("Position"))
	assert.Equal(t, "Position", single.PositionColumn)
	assert.Empty(t, single.ManagerColumn)
	assert.Empty(t, single.DisplayColumns)
}

func TestChartConfig_ToggleDisplayColumn(t *testing.T) {
	cfg := &ChartConfig{DisplayColumns: []string{"Name"}, HeaderFields: []string{"Name"}}

	cfg.ToggleDisplayColumn("Dept")
	assert.Equal(t, []string{"Name", "Dept"}, cfg.DisplayColumns)

	cfg.ToggleDisplayColumn("Name")
	assert.Equal(t, []string{"Dept"}, cfg.DisplayColumns)
	assert.Empty(t, cfg.HeaderFields, "removing a display column also drops it from header fields")
}

func TestChartConfig_SetHeaderFields(t *testing.T) {
	cfg := &ChartConfig{DisplayColumns: []string{"Name", "Dept", "Title", "Site"}}

	cfg.SetHeaderFields([]string{"Title", "Name", "Unknown", "Title"})

	assert.Equal(t, []string{"Title", "Name"}, cfg.HeaderFields)
	assert.Equal(t, []string{"Title", "Name", "Dept", "Site"}, cfg.DisplayColumns)
	assert.True(t, cfg.IsHeader("Title"))
	assert.False(t, cfg.IsHeader("Dept"))
}

func TestChartConfig_ActiveFilters(t *testing.T) {
	cfg := &ChartConfig{Filters: FilterSpec{
		"Dept": {Kind: FilterEquals, Value: "R&D"},
		"Site": {Kind: FilterContains, Value: "   "},
		"Name": {Value: ""},
	}}

	active := cfg.ActiveFilters()
	assert.Len(t, active, 1)
	assert.Contains(t, active, "Dept")
}

func TestChartConfig_Validate(t *testing.T) {
	valid := &ChartConfig{
		PositionColumn: "Position",
		ManagerColumn:  "Manager",
		DisplayColumns: []string{"Name"},
		HeaderFields:   []string{"Name"},
		ValueColors:    map[string]string{"R&D": "#3182ce"},
		Filters:        FilterSpec{"Name": {Kind: FilterStartsWith, Value: "a"}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *ChartConfig)
		code   ErrorCode
	}{
		{"缺少职位列", func(c *ChartConfig) { c.PositionColumn = "" }, ErrCodeValidation},
		{"非法颜色", func(c *ChartConfig) { c.ValueColors["x"] = "blue" }, ErrCodeValidation},
		{"非法过滤类型", func(c *ChartConfig) { c.Filters["Name"] = Filter{Kind: "regex", Value: "a"} }, ErrCodeValidation},
		{"职位列与上级列相同", func(c *ChartConfig) { c.ManagerColumn = "Position" }, ErrCodeValidation},
		{"表头字段不在展示列", func(c *ChartConfig) { c.HeaderFields = []string{"Dept"} }, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid.Clone()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if list, ok := err.(*ErrorList); ok {
				assert.NotEmpty(t, list.GetByType(tt.code))
			} else {
				assert.True(t, IsErrorType(err, tt.code), "unexpected error: %v", err)
			}
		})
	}
}

func TestChartConfig_ValidateAgainst(t *testing.T) {
	cfg := &ChartConfig{
		PositionColumn: "Position",
		ManagerColumn:  "Boss",
		DisplayColumns: []string{"Name", "Dept"},
	}

	err := cfg.ValidateAgainst(NewColumnSet("Position", "Manager", "Name"))
	require.Error(t, err)

	list, ok := err.(*ErrorList)
	require.True(t, ok)
	assert.Len(t, list.GetByType(ErrCodeColumnNotFound), 2)
}

func TestChartConfig_Clone(t *testing.T) {
	cfg := &ChartConfig{
		DisplayColumns:   []string{"A"},
		CategoryFieldMap: map[string][]string{"FT": {"B"}},
		Filters:          FilterSpec{"A": {Value: "x"}},
	}
	clone := cfg.Clone()
	clone.DisplayColumns[0] = "Z"
	clone.CategoryFieldMap["FT"][0] = "Z"
	clone.Filters["A"] = Filter{Value: "y"}

	assert.Equal(t, "A", cfg.DisplayColumns[0])
	assert.Equal(t, "B", cfg.CategoryFieldMap["FT"][0])
	assert.Equal(t, "x", cfg.Filters["A"].Value)
	assert.Nil(t, (*ChartConfig)(nil).Clone())
}
