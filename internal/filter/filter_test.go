package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/freedkr/orgchart/internal/model"
)

func staff() []model.Record {
	return []model.Record{
		{"Position": "CEO", "Dept": "Executive", "Site": "Berlin"},
		{"Position": "VP Eng", "Dept": "Engineering", "Site": " berlin "},
		{"Position": "Engineer", "Dept": "engineering", "Site": "Remote"},
		{"Position": "Designer", "Dept": "Design", "Site": ""},
		{"Position": "Intern", "Site": "Paris"},
	}
}

func positions(records []model.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Get("Position")
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		spec     model.FilterSpec
		expected []string
	}{
		{
			name:     "equals 忽略大小写和空白",
			spec:     model.FilterSpec{"Site": {Kind: model.FilterEquals, Value: " BERLIN"}},
			expected: []string{"CEO", "VP Eng"},
		},
		{
			name:     "notEquals 空单元格不通过",
			spec:     model.FilterSpec{"Dept": {Kind: model.FilterNotEquals, Value: "executive"}},
			expected: []string{"VP Eng", "Engineer", "Designer"},
		},
		{
			name:     "contains",
			spec:     model.FilterSpec{"Dept": {Kind: model.FilterContains, Value: "ENG"}},
			expected: []string{"VP Eng", "Engineer"},
		},
		{
			name:     "startsWith",
			spec:     model.FilterSpec{"Dept": {Kind: model.FilterStartsWith, Value: "de"}},
			expected: []string{"Designer"},
		},
		{
			name:     "endsWith",
			spec:     model.FilterSpec{"Site": {Kind: model.FilterEndsWith, Value: "te"}},
			expected: []string{"Engineer"},
		},
		{
			name:     "未知类型按 contains 处理",
			spec:     model.FilterSpec{"Dept": {Kind: "fuzzy", Value: "sign"}},
			expected: []string{"Designer"},
		},
		{
			name:     "缺省类型按 contains 处理",
			spec:     model.FilterSpec{"Site": {Value: "ar"}},
			expected: []string{"Intern"},
		},
		{
			name: "多列 AND",
			spec: model.FilterSpec{
				"Dept": {Kind: model.FilterContains, Value: "engineering"},
				"Site": {Kind: model.FilterEquals, Value: "berlin"},
			},
			expected: []string{"VP Eng"},
		},
		{
			name:     "不存在的列",
			spec:     model.FilterSpec{"Nope": {Kind: model.FilterNotEquals, Value: "x"}},
			expected: []string{},
		},
		{
			name:     "空白条件值不生效",
			spec:     model.FilterSpec{"Dept": {Kind: model.FilterEquals, Value: "   "}},
			expected: []string{"CEO", "VP Eng", "Engineer", "Designer", "Intern"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := positions(Apply(staff(), tt.spec))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_NoActiveFiltersRoundTrip(t *testing.T) {
	records := staff()

	for _, spec := range []model.FilterSpec{nil, {}, {"Dept": {Kind: model.FilterEquals}}} {
		got := Apply(records, spec)
		if diff := cmp.Diff(records, got); diff != "" {
			t.Errorf("Apply() with inert spec changed records (-want +got):\n%s", diff)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	specs := []model.FilterSpec{
		{"Dept": {Kind: model.FilterContains, Value: "eng"}},
		{"Site": {Kind: model.FilterNotEquals, Value: "paris"}},
		{"Dept": {Kind: model.FilterStartsWith, Value: "e"}, "Site": {Kind: model.FilterEndsWith, Value: "n"}},
	}

	for _, spec := range specs {
		once := Apply(staff(), spec)
		twice := Apply(once, spec)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Apply() is not idempotent (-once +twice):\n%s", diff)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := staff()
	before := positions(records)

	Apply(records, model.FilterSpec{"Dept": {Kind: model.FilterEquals, Value: "design"}})

	if diff := cmp.Diff(before, positions(records)); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestMatchesAndClean(t *testing.T) {
	spec := model.FilterSpec{
		"Dept": {Kind: model.FilterEquals, Value: "design"},
		"Site": {Kind: model.FilterEquals, Value: ""},
	}

	if !Matches(model.Record{"Dept": "Design"}, spec) {
		t.Error("Expected record to match")
	}
	if Matches(model.Record{"Dept": 0}, spec) {
		t.Error("Expected numeric cell not to match")
	}

	cleaned := Clean(spec)
	if len(cleaned) != 1 {
		t.Errorf("Expected 1 active filter after Clean, got %d", len(cleaned))
	}
}

func TestColumnValues(t *testing.T) {
	records := append(staff(), model.Record{"Position": "Ops", "Site": "Berlin"})

	got := ColumnValues(records, "Site", 0)
	expected := []string{"Berlin", "Paris", "Remote", "berlin"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("ColumnValues() mismatch (-want +got):\n%s", diff)
	}

	limited := ColumnValues(records, "Site", 2)
	if len(limited) != 2 {
		t.Errorf("Expected limit 2, got %v", limited)
	}

	all := Suggestions(records, model.NewColumnSet("Dept", "Missing"), DefaultSuggestionLimit)
	if len(all["Dept"]) != 4 || len(all["Missing"]) != 0 {
		t.Errorf("Suggestions() = %v", all)
	}
}
