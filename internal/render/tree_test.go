package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/model"
)

func buildView(t *testing.T, records []model.Record, cfg *model.ChartConfig) *chart.View {
	t.Helper()
	c, err := chart.Build(context.Background(), records, cfg)
	require.NoError(t, err)
	return c.View()
}

var records = []model.Record{
	{"Position": "CEO", "Manager": "", "Name": "Alice", "Dept": "Exec"},
	{"Position": "VP", "Manager": "CEO", "Name": "Bob"},
	{"Position": "Mgr", "Manager": "VP"},
	{"Position": "CFO", "Manager": "CEO", "Dept": "Finance"},
}

func TestTreeRenderer_Render(t *testing.T) {
	cfg := &model.ChartConfig{
		PositionColumn: "Position",
		ManagerColumn:  "Manager",
		DisplayColumns: []string{"Name", "Dept"},
		HeaderFields:   []string{"Name"},
	}

	var buf bytes.Buffer
	r := NewTreeRenderer(&buf, Options{})
	require.NoError(t, r.Write(&buf, buildView(t, records, cfg)))

	expected := strings.Join([]string{
		"CEO",
		"│ Alice",
		"│ Dept: Exec",
		"├── VP",
		"│   │ Bob",
		"│   └── Mgr",
		"└── CFO",
		"      Dept: Finance",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestTreeRenderer_Options(t *testing.T) {
	cfg := &model.ChartConfig{
		PositionColumn: "Position",
		ManagerColumn:  "Manager",
		DisplayColumns: []string{"Name", "Dept"},
	}

	var buf bytes.Buffer
	out := NewTreeRenderer(&buf, Options{HideDetails: true, MaxDepth: 1}).Render(buildView(t, records, cfg))

	assert.NotContains(t, out, "Dept:")
	assert.NotContains(t, out, "Mgr")
	assert.Contains(t, out, "… 1 more")
}

func TestTreeRenderer_VirtualRootAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewTreeRenderer(&buf, Options{})

	forest := []model.Record{{"Position": "A"}, {"Position": "B"}}
	out := r.Render(buildView(t, forest, &model.ChartConfig{PositionColumn: "Position", ManagerColumn: "Manager"}))
	assert.Equal(t, "Organization\n├── A\n└── B\n", out)

	assert.Equal(t, EmptyMessage+"\n", r.Render(buildView(t, nil, &model.ChartConfig{PositionColumn: "Position"})))
	assert.Equal(t, EmptyMessage+"\n", r.Render(nil))
}
